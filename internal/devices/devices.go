package devices

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	audioHeader = "AVFoundation audio devices:"
	videoHeader = "AVFoundation video devices:"
)

// Lines look like: [AVFoundation indev @ 0x7f8b] [2] BlackHole 2ch
var reDeviceLine = regexp.MustCompile(`\[(\d+)\]\s+(.+)$`)

// List runs ffmpeg's device listing and parses its audio section
func (l *implLister) List(ctx context.Context) ([]Device, error) {
	args := []string{
		"-hide_banner",
		"-f", "avfoundation",
		"-list_devices", "true",
		"-i", "",
	}

	// ffmpeg exits non-zero after listing because there is no real input
	out, err := l.executor.Probe(ctx, l.ffmpegPath, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	devs, err := Parse(out)
	if err != nil {
		l.logger.Debug(ctx, "Unrecognised device listing output:\n%s", out)
		return nil, err
	}

	l.logger.Debug(ctx, "Found %d audio devices", len(devs))
	return devs, nil
}

// Parse extracts audio devices from ffmpeg -list_devices output.
func Parse(output string) ([]Device, error) {
	inAudio := false
	seenHeader := false
	devs := []Device{}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)

		if strings.Contains(line, audioHeader) {
			inAudio = true
			seenHeader = true
			continue
		}
		if strings.Contains(line, videoHeader) {
			if inAudio {
				break
			}
			continue
		}
		if !inAudio {
			continue
		}

		m := reDeviceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad device index %q", ErrQuery, m[1])
		}
		devs = append(devs, Device{Index: idx, Name: strings.TrimSpace(m[2])})
	}

	if !seenHeader {
		return nil, fmt.Errorf("%w: no audio device section in ffmpeg output", ErrQuery)
	}
	return devs, nil
}

// Find returns the device with the given index.
func Find(devs []Device, index int) (Device, bool) {
	for _, d := range devs {
		if d.Index == index {
			return d, true
		}
	}
	return Device{}, false
}
