package recorder

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

// Options configures the capture process.
type Options struct {
	FFmpegPath  string
	InputFormat string
	SampleRate  int
	Channels    int
	StopTimeout time.Duration
	// LogPath receives ffmpeg's output. Empty discards it.
	LogPath string
	// SettleTime is how long Start watches the process before reporting it launched.
	SettleTime time.Duration
}

// OptionsFromConfig builds Options from the ffmpeg section of the config.
func OptionsFromConfig(cfg *config.Config, logPath string) Options {
	return Options{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		InputFormat: cfg.FFmpeg.InputFormat,
		SampleRate:  cfg.FFmpeg.SampleRate,
		Channels:    cfg.FFmpeg.Channels,
		StopTimeout: cfg.FFmpeg.StopTimeout,
		LogPath:     logPath,
	}
}

type implRecorder struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	active   *Handle
	// stopping is the path of a recording whose ffmpeg is still finalizing
	stopping string
}

// New creates a Recorder backed by an ffmpeg capture process
func New(opts Options, exec executor.Executor, log logger.Logger) Recorder {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.InputFormat == "" {
		opts.InputFormat = "avfoundation"
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = 10 * time.Second
	}
	if opts.SettleTime <= 0 {
		opts.SettleTime = 500 * time.Millisecond
	}

	return &implRecorder{
		opts:     opts,
		executor: exec,
		logger:   log,
		now:      time.Now,
	}
}
