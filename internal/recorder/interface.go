package recorder

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

var (
	// ErrAlreadyRecording is returned by Start while another recording is active.
	ErrAlreadyRecording = errors.New("a recording is already in progress")
	// ErrNotRecording is returned by Stop when the handle is not the active recording.
	ErrNotRecording = errors.New("no recording in progress")
	// ErrInvalidDevice is returned for negative device indices.
	ErrInvalidDevice = errors.New("device index must be a non-negative integer")
)

// Recorder captures a microphone and a system-audio input into one WAV file.
// At most one recording is active at a time.
type Recorder interface {
	Start(ctx context.Context, req StartRequest) (*Handle, error)
	Stop(ctx context.Context, h *Handle) (Result, error)
	// Active returns the in-flight recording, or nil when idle.
	Active() *Handle
}

type StartRequest struct {
	MicIndex   int
	SysIndex   int
	OutputPath string
}

// Handle is one in-flight capture process. It is only valid until Stop.
type Handle struct {
	Path      string
	StartedAt time.Time
	PID       int
	MicIndex  int
	SysIndex  int

	proc executor.Process
}

// Elapsed is the recording time as of now.
func (h *Handle) Elapsed(now time.Time) time.Duration {
	if h == nil {
		return 0
	}
	return now.Sub(h.StartedAt)
}

// Result describes the finalized audio file.
type Result struct {
	Path     string
	Bytes    int64
	Duration time.Duration
}
