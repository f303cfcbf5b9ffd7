package processor

import (
	"context"
)

// Processor runs the post-recording pipeline for one session.
type Processor interface {
	// Process transcribes then summarizes the session audio. Stages run strictly in
	// order and the first fatal error stops the run. A publish failure is not fatal
	// and is returned in Outcome.PublishErr.
	Process(ctx context.Context, job Job) (Outcome, error)
	// Import moves an audio file into the sessions directory under a new session
	// name, converting it to WAV when needed, and returns the new audio path.
	Import(ctx context.Context, srcPath string) (string, error)
}

type Job struct {
	AudioPath string
	Student   string
	Topic     string
	Engine    string
	Language  string
	Publish   bool
}

type Outcome struct {
	Session        string `json:"session"`
	TranscriptPath string `json:"transcript_path"`
	SummaryPath    string `json:"summary_path"`
	PageID         string `json:"page_id,omitempty"`
	// PublishErr is a *publisher.Error when publishing was requested and failed.
	PublishErr error `json:"-"`
}
