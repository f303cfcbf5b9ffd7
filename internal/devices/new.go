package devices

import (
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

type implLister struct {
	ffmpegPath string
	executor   executor.Executor
	logger     logger.Logger
}

// New creates a Lister that asks ffmpeg's avfoundation backend for devices
func New(ffmpegPath string, exec executor.Executor, log logger.Logger) Lister {
	return &implLister{
		ffmpegPath: ffmpegPath,
		executor:   exec,
		logger:     log,
	}
}
