package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/publisher"
)

// Options tunes prompt construction.
type Options struct {
	Temperature        float32
	MaxTranscriptChars int
	// Language is the lesson language code the notes are written in.
	Language string
}

type implSummarizer struct {
	opts      Options
	provider  Provider
	publisher publisher.Publisher
	logger    logger.Logger
}

// New creates a Summarizer. pub may be nil when publishing is not configured.
func New(opts Options, provider Provider, pub publisher.Publisher, log logger.Logger) Summarizer {
	if opts.MaxTranscriptChars <= 0 {
		opts.MaxTranscriptChars = 15000
	}
	return &implSummarizer{
		opts:      opts,
		provider:  provider,
		publisher: pub,
		logger:    log,
	}
}

// OptionsFromConfig reads the summary settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Temperature:        cfg.Summary.Temperature,
		MaxTranscriptChars: cfg.Summary.MaxTranscriptChars,
		Language:           cfg.Transcribe.Language,
	}
}

// NewProvider builds the provider selected in cfg. A missing API key is a
// config.CredentialError, returned before any client is created.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	if err := cfg.RequireCredentials("", cfg.Summary.Provider, false); err != nil {
		return nil, err
	}

	svc := cfg.Services()
	switch cfg.Summary.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, svc.Gemini)
	default:
		return NewOpenAI(svc.OpenAI), nil
	}
}
