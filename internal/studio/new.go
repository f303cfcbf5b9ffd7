package studio

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/recorder"
)

type implStudio struct {
	sessionsDir string
	recorder    recorder.Recorder
	processor   processor.Processor
	catalog     catalog.Catalog
	logger      logger.Logger
	now         func() time.Time

	mu         sync.Mutex
	pending    *processor.Job
	processing int
	stopping   bool
	lastErr    string
	lastWarn   string
	last       *processor.Outcome
	wg         sync.WaitGroup
	// runMu serializes background processing runs
	runMu sync.Mutex
}

// New creates a Studio. cat may be nil.
func New(sessionsDir string, rec recorder.Recorder, proc processor.Processor, cat catalog.Catalog, log logger.Logger) Studio {
	return &implStudio{
		sessionsDir: sessionsDir,
		recorder:    rec,
		processor:   proc,
		catalog:     cat,
		logger:      log,
		now:         time.Now,
	}
}
