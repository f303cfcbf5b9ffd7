// Package session names recording sessions and locates their artifacts.
//
// A session owns three sibling files in the sessions directory:
//
//	<base>.wav      raw audio
//	<base>.wav.txt  transcript
//	<base>.wav.md   summary
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	namePrefix       = "session-"
	nameLayout       = "20060102-150405"
	AudioSuffix      = ".wav"
	TranscriptSuffix = ".txt"
	SummarySuffix    = ".md"
)

// Session identifies one record -> transcribe -> summarize run.
type Session struct {
	Dir       string
	Name      string
	CreatedAt time.Time
}

// New names a session after now. The name does not change afterwards.
func New(dir string, now time.Time) Session {
	return Session{
		Dir:       dir,
		Name:      namePrefix + now.Format(nameLayout),
		CreatedAt: now,
	}
}

// FromAudio returns the session that owns the audio file at path.
func FromAudio(path string) Session {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	s := Session{Dir: filepath.Dir(path), Name: name}
	if t, err := time.ParseInLocation(nameLayout, strings.TrimPrefix(name, namePrefix), time.Local); err == nil {
		s.CreatedAt = t
	}
	return s
}

// FromTranscript returns the session that owns the transcript at path.
func FromTranscript(path string) Session {
	return FromAudio(AudioPathFor(path))
}

func (s Session) AudioPath() string {
	return filepath.Join(s.Dir, s.Name+AudioSuffix)
}

func (s Session) TranscriptPath() string {
	return TranscriptPathFor(s.AudioPath())
}

func (s Session) SummaryPath() string {
	return SummaryPathFor(s.TranscriptPath())
}

// TranscriptPathFor is the transcript location for any audio file.
func TranscriptPathFor(audioPath string) string {
	return audioPath + TranscriptSuffix
}

// SummaryPathFor is the summary location for a transcript: its .txt suffix becomes .md.
func SummaryPathFor(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, TranscriptSuffix) + SummarySuffix
}

// AudioPathFor reverses TranscriptPathFor.
func AudioPathFor(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, TranscriptSuffix)
}

// Info describes a session found on disk.
type Info struct {
	Name          string    `json:"name"`
	AudioPath     string    `json:"audio_path"`
	ModTime       time.Time `json:"mod_time"`
	AudioBytes    int64     `json:"audio_bytes"`
	HasTranscript bool      `json:"has_transcript"`
	HasSummary    bool      `json:"has_summary"`
}

// Scan lists the sessions in dir, newest first. A missing directory yields no sessions.
func Scan(dir string) ([]Info, error) {
	matches, err := filepath.Glob(filepath.Join(dir, namePrefix+"*"+AudioSuffix))
	if err != nil {
		return nil, fmt.Errorf("glob sessions: %w", err)
	}

	infos := make([]Info, 0, len(matches))
	for _, audioPath := range matches {
		st, err := os.Stat(audioPath)
		if err != nil || st.IsDir() {
			continue
		}
		s := FromAudio(audioPath)
		infos = append(infos, Info{
			Name:          s.Name,
			AudioPath:     audioPath,
			ModTime:       st.ModTime(),
			AudioBytes:    st.Size(),
			HasTranscript: exists(s.TranscriptPath()),
			HasSummary:    exists(s.SummaryPath()),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ModTime.Equal(infos[j].ModTime) {
			return infos[i].Name > infos[j].Name
		}
		return infos[i].ModTime.After(infos[j].ModTime)
	})
	return infos, nil
}

// Lookup finds a session by name inside dir.
func Lookup(dir, name string) (Session, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return Session{}, fmt.Errorf("invalid session name %q", name)
	}
	s := FromAudio(filepath.Join(dir, name+AudioSuffix))
	if !exists(s.AudioPath()) {
		return Session{}, fmt.Errorf("session %s: %w", name, os.ErrNotExist)
	}
	return s, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
