package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

type whisperBackend struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates the local backend around the whisper.cpp CLI. It needs no network.
func NewWhisper(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Backend {
	return &whisperBackend{cfg: cfg, executor: exec, logger: log}
}

// Transcribe runs whisper.cpp into a scratch directory and formats its SRT output
func (w *whisperBackend) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	scratch, err := os.MkdirTemp("", "lesson-whisper-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	// whisper.cpp appends .srt to the prefix
	prefix := filepath.Join(scratch, "transcript")

	w.logger.Info(ctx, "Starting whisper.cpp with %d threads: %s", w.cfg.Threads, audioPath)
	if w.cfg.UseGPU {
		w.logger.Debug(ctx, "GPU acceleration enabled")
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, w.args(audioPath, language, prefix)...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	f, err := os.Open(prefix + ".srt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	defer f.Close()

	segs, err := ParseSRT(f)
	if err != nil {
		return "", err
	}
	return FormatSegments(segs), nil
}

// -ml/-mc 0 lift the segment length and context limits, -bo 5 keeps the best of five candidates
func (w *whisperBackend) args(audioPath, language, prefix string) []string {
	if language == "" {
		language = "auto"
	}

	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-l", language,
		"-t", strconv.Itoa(w.cfg.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", prefix,
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}
	if !w.cfg.UseGPU {
		args = append(args, "-ng")
	}
	return args
}
