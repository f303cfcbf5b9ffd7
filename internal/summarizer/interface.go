package summarizer

import (
	"context"
	"fmt"
)

// Summarizer turns a lesson transcript into markdown notes.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (Result, error)
	// Export writes DOCX copies of a summary and its transcript into outDir.
	Export(ctx context.Context, req ExportRequest) ([]string, error)
}

// Provider is one text-generation backend. Generate is called once per summary.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

type Request struct {
	TranscriptPath string
	Student        string
	Topic          string
	// OutputPath defaults to the transcript path with .txt replaced by .md.
	OutputPath string
	Publish    bool
}

type Result struct {
	SummaryPath string
	// PageID is set when the summary was published.
	PageID string
	// PublishErr is a *publisher.Error. The summary file is valid regardless.
	PublishErr error
}

type ExportRequest struct {
	SummaryPath    string
	TranscriptPath string
	OutDir         string
}

// GenerationError is returned when the provider call fails or returns nothing.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("summary generation (%s) failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
