package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

type implTranscriber struct {
	backends map[string]Backend
	// credentials is checked before a backend runs; nil means nothing is required.
	credentials func(engine string) error
	logger      logger.Logger
}

// New creates a Transcriber with the local whisper.cpp and the OpenAI backends
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Transcriber {
	return &implTranscriber{
		backends: map[string]Backend{
			config.EngineLocal: NewWhisper(cfg.Whisper, exec, log),
			config.EngineCloud: cloudFromConfig{cfg: cfg},
		},
		credentials: func(engine string) error {
			return cfg.RequireCredentials(engine, "", false)
		},
		logger: log,
	}
}

// NewWithBackends creates a Transcriber over explicit backends keyed by engine name
func NewWithBackends(backends map[string]Backend, log logger.Logger) Transcriber {
	return &implTranscriber{
		backends: backends,
		logger:   log,
	}
}

// cloudFromConfig reads the OpenAI settings on every call so updated credentials apply
type cloudFromConfig struct {
	cfg *config.Config
}

func (c cloudFromConfig) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	return NewOpenAI(c.cfg.Services().OpenAI).Transcribe(ctx, audioPath, language)
}
