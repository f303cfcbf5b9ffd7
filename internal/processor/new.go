package processor

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/summarizer"
	"github.com/nguyentantai21042004/lesson-recorder/internal/transcriber"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

// SummarizerFactory builds the summarizer for a run. It is called after
// transcription so provider clients only exist when needed.
type SummarizerFactory func(ctx context.Context, publish bool) (summarizer.Summarizer, error)

// Deps are the components the pipeline drives. Catalog may be nil.
type Deps struct {
	Executor      executor.Executor
	Transcriber   transcriber.Transcriber
	NewSummarizer SummarizerFactory
	Catalog       catalog.Catalog
}

type implProcessor struct {
	cfg           *config.Config
	executor      executor.Executor
	transcriber   transcriber.Transcriber
	newSummarizer SummarizerFactory
	catalog       catalog.Catalog
	logger        logger.Logger
	now           func() time.Time
}

// New creates a new Processor instance
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	return &implProcessor{
		cfg:           cfg,
		executor:      deps.Executor,
		transcriber:   deps.Transcriber,
		newSummarizer: deps.NewSummarizer,
		catalog:       deps.Catalog,
		logger:        log,
		now:           time.Now,
	}
}
