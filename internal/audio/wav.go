// Package audio inspects and synthesizes PCM WAV files.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned when a file is not a readable RIFF/WAVE file.
var ErrInvalidWAV = errors.New("not a valid wav file")

// Info describes a WAV file on disk.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	Bytes      int64
}

// Inspect reads the header of the WAV file at path.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("stat wav: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{Bytes: stat.Size()}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}

	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Bytes:      stat.Size(),
	}

	d, err := dec.Duration()
	if err != nil {
		return info, fmt.Errorf("read wav duration: %w", err)
	}
	info.Duration = d

	return info, nil
}

// WriteTone writes a 16-bit PCM sine tone. It produces synthetic input for
// pipeline checks without a microphone.
func WriteTone(path string, length time.Duration, sampleRate, channels int, freq float64) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("invalid format %d Hz / %d ch", sampleRate, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	frames := int(length.Seconds() * float64(sampleRate))
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: 16,
	}

	const amplitude = 0.3 * math.MaxInt16
	for i := 0; i < frames; i++ {
		v := int(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			buf.Data[i*channels+c] = v
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
