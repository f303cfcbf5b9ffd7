// Package studio holds the interactive recording state shared by the dashboards:
// the active recording, the background processing run and its last result.
package studio

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
)

type Studio interface {
	// Start records into a new session. It fails with recorder.ErrAlreadyRecording
	// while a recording is active.
	Start(ctx context.Context, req StartRequest) (Status, error)
	// Stop finalizes the recording and processes it in the background. It fails
	// with recorder.ErrNotRecording when idle.
	Stop(ctx context.Context) (Status, error)
	Status() Status
	// Busy reports whether a recording or a processing run is in progress.
	Busy() bool
	// Wait blocks until background processing has finished.
	Wait()
}

type StartRequest struct {
	MicIndex int
	SysIndex int
	Student  string
	Topic    string
	Engine   string
	Language string
	Publish  bool
}

type Status struct {
	Recording      bool               `json:"recording"`
	Session        string             `json:"session,omitempty"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	Processing     bool               `json:"processing"`
	LastError      string             `json:"last_error,omitempty"`
	LastWarning    string             `json:"last_warning,omitempty"`
	LastOutcome    *processor.Outcome `json:"last_outcome,omitempty"`
}
