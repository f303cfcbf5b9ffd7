package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for an unknown session.
var ErrNotFound = errors.New("session not in catalog")

// Stage is a pipeline step recorded against a session.
type Stage string

const (
	StageRecorded    Stage = "recorded"
	StageTranscribed Stage = "transcribed"
	StageSummarized  Stage = "summarized"
	StagePublished   Stage = "published"
	StageFailed      Stage = "failed"
)

// Catalog indexes sessions and their pipeline progress. The session
// directory stays the source of truth for artifacts.
type Catalog interface {
	// Upsert creates the record or updates its non-empty fields.
	Upsert(ctx context.Context, rec Record) error
	// MarkStage stamps a stage. detail is the page id for StagePublished and
	// the error text for StageFailed. Any other stage clears the last error.
	MarkStage(ctx context.Context, name string, stage Stage, detail string) error
	Get(ctx context.Context, name string) (Record, error)
	// List returns the newest sessions first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

type Record struct {
	Name          string     `json:"name"`
	AudioPath     string     `json:"audio_path"`
	Student       string     `json:"student,omitempty"`
	Topic         string     `json:"topic,omitempty"`
	Engine        string     `json:"engine,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	RecordedAt    *time.Time `json:"recorded_at,omitempty"`
	TranscribedAt *time.Time `json:"transcribed_at,omitempty"`
	SummarizedAt  *time.Time `json:"summarized_at,omitempty"`
	PublishedPage string     `json:"published_page,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}
