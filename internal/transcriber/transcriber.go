package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
)

// Transcribe runs the selected engine and writes the transcript in one step
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath, engine, language string) (string, error) {
	engine, err := config.NormalizeEngine(engine)
	if err != nil {
		return "", &Error{AudioPath: audioPath, Err: err}
	}

	backend, ok := t.backends[engine]
	if !ok {
		return "", &Error{AudioPath: audioPath, Engine: engine, Err: errors.New("engine not available")}
	}

	if err := checkAudio(audioPath); err != nil {
		return "", &Error{AudioPath: audioPath, Engine: engine, Err: err}
	}

	if t.credentials != nil {
		if err := t.credentials(engine); err != nil {
			return "", err
		}
	}

	log := t.logger.With(map[string]interface{}{"engine": engine, "audio": filepath.Base(audioPath)})
	log.Info(ctx, "Transcribing %s (language=%s)", audioPath, displayLanguage(language))
	start := time.Now()

	text, err := backend.Transcribe(ctx, audioPath, language)
	if err != nil {
		return "", &Error{AudioPath: audioPath, Engine: engine, Err: err}
	}

	out := session.TranscriptPathFor(audioPath)
	if err := writeFileAtomic(out, []byte(text)); err != nil {
		return "", &Error{AudioPath: audioPath, Engine: engine, Err: err}
	}

	if text == "" {
		log.Warn(ctx, "No speech recognized in %s", audioPath)
	}
	log.Info(ctx, "Transcript saved: %s (%s)", out, time.Since(start).Round(time.Millisecond))
	return out, nil
}

func checkAudio(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("audio file: %s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	return f.Close()
}

// writeFileAtomic writes data to a temp file in the target directory and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp transcript: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write transcript: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close transcript: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename transcript: %w", err)
	}
	return nil
}

func displayLanguage(language string) string {
	if language == "" {
		return "auto"
	}
	return language
}
