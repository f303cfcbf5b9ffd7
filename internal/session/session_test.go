package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewNamingAndPaths(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 5, 7, 0, time.Local)
	s := New("sessions", now)

	if s.Name != "session-20260314-090507" {
		t.Errorf("Name = %q", s.Name)
	}
	if got := s.AudioPath(); got != filepath.Join("sessions", "session-20260314-090507.wav") {
		t.Errorf("AudioPath() = %q", got)
	}
	if got := s.TranscriptPath(); got != filepath.Join("sessions", "session-20260314-090507.wav.txt") {
		t.Errorf("TranscriptPath() = %q", got)
	}
	if got := s.SummaryPath(); got != filepath.Join("sessions", "session-20260314-090507.wav.md") {
		t.Errorf("SummaryPath() = %q", got)
	}
}

func TestSuffixConvention(t *testing.T) {
	audio := "/tmp/lesson.wav"
	tr := TranscriptPathFor(audio)
	if tr != "/tmp/lesson.wav.txt" {
		t.Errorf("TranscriptPathFor() = %q", tr)
	}
	if got := SummaryPathFor(tr); got != "/tmp/lesson.wav.md" {
		t.Errorf("SummaryPathFor() = %q", got)
	}
	if got := AudioPathFor(tr); got != audio {
		t.Errorf("AudioPathFor() = %q", got)
	}
}

func TestFromAudioParsesTimestamp(t *testing.T) {
	s := FromAudio("/data/session-20260314-090507.wav")
	if s.Name != "session-20260314-090507" || s.Dir != "/data" {
		t.Errorf("FromAudio() = %+v", s)
	}
	if s.CreatedAt.Hour() != 9 || s.CreatedAt.Day() != 14 {
		t.Errorf("CreatedAt = %v", s.CreatedAt)
	}

	other := FromAudio("/data/lesson.wav")
	if !other.CreatedAt.IsZero() {
		t.Errorf("CreatedAt should be zero for a non-session name, got %v", other.CreatedAt)
	}
}

func TestFromTranscript(t *testing.T) {
	s := FromTranscript("/data/session-20260314-090507.wav.txt")
	if s.Name != "session-20260314-090507" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.AudioPath() != "/data/session-20260314-090507.wav" {
		t.Errorf("AudioPath() = %q", s.AudioPath())
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	older := New(dir, time.Date(2026, 1, 1, 10, 0, 0, 0, time.Local))
	newer := New(dir, time.Date(2026, 1, 2, 10, 0, 0, 0, time.Local))

	for _, p := range []string{older.AudioPath(), older.TranscriptPath(), newer.AudioPath(), newer.TranscriptPath(), newer.SummaryPath()} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.wav"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older.AudioPath(), past, past); err != nil {
		t.Fatal(err)
	}

	infos, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Scan() returned %d sessions, want 2", len(infos))
	}
	if infos[0].Name != newer.Name {
		t.Errorf("newest first: got %q", infos[0].Name)
	}
	if !infos[0].HasSummary || !infos[0].HasTranscript {
		t.Errorf("newer artifacts = %+v", infos[0])
	}
	if infos[1].HasSummary || !infos[1].HasTranscript {
		t.Errorf("older artifacts = %+v", infos[1])
	}
}

func TestScanMissingDir(t *testing.T) {
	infos, err := Scan(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(infos) != 0 {
		t.Errorf("Scan() = %v, %v", infos, err)
	}
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, time.Now())
	if err := os.WriteFile(s.AudioPath(), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Lookup(dir, s.Name)
	if err != nil || got.AudioPath() != s.AudioPath() {
		t.Errorf("Lookup() = %+v, %v", got, err)
	}
	if _, err := Lookup(dir, "../etc/passwd"); err == nil {
		t.Error("Lookup() should reject path traversal")
	}
	if _, err := Lookup(dir, "session-19990101-000000"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Lookup() missing error = %v", err)
	}
}
