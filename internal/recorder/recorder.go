package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/lesson-recorder/internal/audio"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
)

// Each input is resampled against its own clock, then the two are mixed and normalised.
const mixFilter = "[0:a]aresample=async=1:first_pts=0,volume=1.0[a0];" +
	"[1:a]aresample=async=1:first_pts=0,volume=1.0[a1];" +
	"[a0][a1]amix=inputs=2:duration=longest:dropout_transition=3,dynaudnorm"

// Start launches the capture process and returns once it is running
func (r *implRecorder) Start(ctx context.Context, req StartRequest) (*Handle, error) {
	if req.MicIndex < 0 || req.SysIndex < 0 {
		return nil, fmt.Errorf("%w: mic=%d sys=%d", ErrInvalidDevice, req.MicIndex, req.SysIndex)
	}
	if req.OutputPath == "" {
		return nil, errors.New("output path is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRecording, r.active.Path)
	}
	if r.stopping != "" {
		return nil, fmt.Errorf("%w: %s is still being finalized", ErrAlreadyRecording, r.stopping)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if r.opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.opts.LogPath), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	args := r.captureArgs(req)
	r.logger.Info(ctx, "Starting capture: mic=%d sys=%d -> %s", req.MicIndex, req.SysIndex, req.OutputPath)
	r.logger.Debug(ctx, "%s %s", r.opts.FFmpegPath, strings.Join(args, " "))

	proc, err := r.executor.Start(executor.StartOptions{LogPath: r.opts.LogPath}, r.opts.FFmpegPath, args...)
	if err != nil {
		return nil, fmt.Errorf("launch ffmpeg: %w", err)
	}

	// A device error makes ffmpeg exit almost immediately
	if err := proc.Wait(r.opts.SettleTime); !errors.Is(err, executor.ErrWaitTimeout) {
		return nil, fmt.Errorf("ffmpeg exited during startup (%v)%s", err, r.logTail())
	}

	h := &Handle{
		Path:      req.OutputPath,
		StartedAt: r.now(),
		PID:       proc.PID(),
		MicIndex:  req.MicIndex,
		SysIndex:  req.SysIndex,
		proc:      proc,
	}
	r.active = h

	r.logger.Info(ctx, "Recording started (pid %d)", h.PID)
	return h, nil
}

// Stop finalizes the active recording and waits for ffmpeg to exit
func (r *implRecorder) Stop(ctx context.Context, h *Handle) (Result, error) {
	r.mu.Lock()
	if h == nil || r.active == nil || h != r.active {
		r.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	r.active = nil
	r.stopping = h.Path
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.stopping = ""
		r.mu.Unlock()
	}()

	r.logger.Info(ctx, "Stopping recording (pid %d) after %s", h.PID, h.Elapsed(r.now()).Round(1e9))

	if err := r.terminate(ctx, h.proc); err != nil {
		r.logger.Warn(ctx, "Capture process did not exit cleanly: %v", err)
	}

	res := Result{Path: h.Path}
	info, err := audio.Inspect(h.Path)
	switch {
	case err == nil:
		res.Bytes = info.Bytes
		res.Duration = info.Duration
	case info.Bytes > 0:
		res.Bytes = info.Bytes
		r.logger.Warn(ctx, "Recorded file is not a finalized wav: %v", err)
	default:
		return res, fmt.Errorf("recording produced no audio at %s: %w%s", h.Path, err, r.logTail())
	}

	r.logger.Info(ctx, "Recording saved: %s (%d bytes, %s)", res.Path, res.Bytes, res.Duration.Round(1e7))
	return res, nil
}

func (r *implRecorder) Active() *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// terminate asks ffmpeg to quit via its stdin command, then SIGINT, then kills it
func (r *implRecorder) terminate(ctx context.Context, proc executor.Process) error {
	if proc.Exited() {
		return proc.Wait(0)
	}

	if _, err := proc.Write([]byte("q")); err != nil {
		r.logger.Debug(ctx, "Writing quit command failed, interrupting: %v", err)
		if err := proc.Interrupt(); err != nil {
			r.logger.Debug(ctx, "Interrupt failed: %v", err)
		}
	}

	err := proc.Wait(r.opts.StopTimeout)
	if !errors.Is(err, executor.ErrWaitTimeout) {
		return err
	}

	r.logger.Warn(ctx, "ffmpeg ignored quit command, sending interrupt")
	if err := proc.Interrupt(); err != nil {
		r.logger.Debug(ctx, "Interrupt failed: %v", err)
	}
	err = proc.Wait(r.opts.StopTimeout)
	if !errors.Is(err, executor.ErrWaitTimeout) {
		return err
	}

	if err := proc.Kill(); err != nil {
		return fmt.Errorf("kill ffmpeg: %w", err)
	}
	return errors.New("ffmpeg killed after stop timeout")
}

func (r *implRecorder) captureArgs(req StartRequest) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "info",
		"-f", r.opts.InputFormat, "-i", ":" + strconv.Itoa(req.MicIndex),
		"-f", r.opts.InputFormat, "-i", ":" + strconv.Itoa(req.SysIndex),
		"-filter_complex", mixFilter,
		"-ac", strconv.Itoa(r.opts.Channels),
		"-ar", strconv.Itoa(r.opts.SampleRate),
		"-c:a", "pcm_s16le",
		"-y",
		req.OutputPath,
	}
}

func (r *implRecorder) logTail() string {
	if r.opts.LogPath == "" {
		return ""
	}
	data, err := os.ReadFile(r.opts.LogPath)
	if err != nil || len(data) == 0 {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return "\nffmpeg log:\n" + strings.Join(lines, "\n")
}
