package summarizer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "session-20250101-120000.wav.md")
	transcript := filepath.Join(dir, "session-20250101-120000.wav.txt")
	os.WriteFile(summary, []byte(RenderMarkdown("Anna", "Chords", "## Homework\n- [ ] F major\n1. Slow practice")), 0644)
	os.WriteFile(transcript, []byte("0.00-1.00: hello\n1.00-2.00: hello\n2.00-3.00: play G\n"), 0644)

	s := New(Options{}, &fakeProvider{}, nil, logger.Discard())
	outDir := filepath.Join(t.TempDir(), "exports")

	files, err := s.Export(context.Background(), ExportRequest{SummaryPath: summary, TranscriptPath: transcript, OutDir: outDir})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	want := []string{
		filepath.Join(outDir, "session-20250101-120000.summary.docx"),
		filepath.Join(outDir, "session-20250101-120000.transcript.docx"),
	}
	if len(files) != len(want) {
		t.Fatalf("Export() = %v, want %v", files, want)
	}
	for i, f := range files {
		if f != want[i] {
			t.Errorf("file %d = %q, want %q", i, f, want[i])
		}
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		// docx is a zip container
		if !bytes.HasPrefix(data, []byte("PK")) {
			t.Errorf("%s is not a docx archive", f)
		}
	}
}

func TestExportNothing(t *testing.T) {
	s := New(Options{}, &fakeProvider{}, nil, logger.Discard())
	if _, err := s.Export(context.Background(), ExportRequest{OutDir: t.TempDir()}); err == nil {
		t.Fatal("Export() expected error with no inputs")
	}
}
