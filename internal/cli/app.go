package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/publisher"
	"github.com/nguyentantai21042004/lesson-recorder/internal/recorder"
	"github.com/nguyentantai21042004/lesson-recorder/internal/summarizer"
	"github.com/nguyentantai21042004/lesson-recorder/internal/transcriber"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

const ffmpegLogName = "ffmpeg.log"

// app holds the loaded configuration and builds components on demand.
type app struct {
	configPath string
	lookup     func(string) (string, bool)
	exec       executor.Executor

	cfg     *config.Config
	log     logger.Logger
	catalog catalog.Catalog
}

func newApp(exec executor.Executor, lookup func(string) (string, bool)) *app {
	return &app{exec: exec, lookup: lookup}
}

// load reads the config and builds the logger. Logs go to stderr so stdout
// carries only command results.
func (a *app) load(stderr io.Writer) error {
	cfg, err := loadConfig(a.configPath, a.lookup)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, stderr)
	return nil
}

func (a *app) close() {
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.log.Warn(context.Background(), "Close catalog: %v", err)
		}
		a.catalog = nil
	}
}

// openCatalog opens the session catalog. The catalog is optional: when it cannot
// be opened the commands run without history tracking.
func (a *app) openCatalog(ctx context.Context) catalog.Catalog {
	if a.catalog != nil {
		return a.catalog
	}
	cat, err := catalog.Open(filepath.Join(a.cfg.Paths.State, catalog.FileName))
	if err != nil {
		a.log.Warn(ctx, "Session catalog unavailable: %v", err)
		return nil
	}
	a.catalog = cat
	return cat
}

func (a *app) lister() devices.Lister {
	return devices.New(a.cfg.FFmpeg.BinaryPath, a.exec, a.log)
}

func (a *app) recorder() recorder.Recorder {
	logPath := filepath.Join(a.cfg.Paths.State, ffmpegLogName)
	return recorder.New(recorder.OptionsFromConfig(a.cfg, logPath), a.exec, a.log)
}

func (a *app) transcriber() transcriber.Transcriber {
	return transcriber.New(a.cfg, a.exec, a.log)
}

// newSummarizer is the processor.SummarizerFactory backed by the configured
// provider and, when publishing, the Notion publisher.
func (a *app) newSummarizer(ctx context.Context, publish bool) (summarizer.Summarizer, error) {
	provider, err := summarizer.NewProvider(ctx, a.cfg)
	if err != nil {
		return nil, err
	}

	var pub publisher.Publisher
	if publish {
		pub, err = publisher.NewNotion(a.cfg, a.log)
		if err != nil {
			return nil, err
		}
	}
	return summarizer.New(summarizer.OptionsFromConfig(a.cfg), provider, pub, a.log), nil
}

func (a *app) processor(cat catalog.Catalog) processor.Processor {
	return processor.New(a.cfg, processor.Deps{
		Executor:      a.exec,
		Transcriber:   a.transcriber(),
		NewSummarizer: a.newSummarizer,
		Catalog:       cat,
	}, a.log)
}
