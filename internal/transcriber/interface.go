package transcriber

import (
	"context"
	"fmt"
)

// Transcriber turns a recording into a transcript file next to it.
type Transcriber interface {
	// Transcribe writes audioPath+".txt" and returns its path. engine is
	// config.EngineLocal or config.EngineCloud; language "" or "auto" lets the engine detect it.
	Transcribe(ctx context.Context, audioPath, engine, language string) (string, error)
}

// Backend is one speech recognition engine. It returns the transcript text.
type Backend interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Error is returned when the audio cannot be read or the engine fails.
type Error struct {
	AudioPath string
	Engine    string
	Err       error
}

func (e *Error) Error() string {
	if e.Engine == "" {
		return fmt.Sprintf("transcription of %s failed: %v", e.AudioPath, e.Err)
	}
	return fmt.Sprintf("transcription of %s (%s) failed: %v", e.AudioPath, e.Engine, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
