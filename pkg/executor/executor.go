package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrWaitTimeout is returned by Process.Wait when the process is still running.
var ErrWaitTimeout = errors.New("process did not exit before timeout")

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Include stderr in error message for debugging
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
		}
		return "", fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return stdout.String(), nil
}

// Probe runs a command for its diagnostic output. Only a failure to start the
// command is returned as error; a non-zero exit is not.
func (e *implExecutor) Probe(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out.String(), fmt.Errorf("command '%s' failed: %w", name, err)
		}
	}

	return out.String(), nil
}

// Start launches a command that keeps running after Start returns
func (e *implExecutor) Start(opts StartOptions, name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var logFile *os.File
	if opts.LogPath != "" {
		f, err := os.Create(opts.LogPath)
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		logFile = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("command '%s' failed to start: %w", name, err)
	}

	p := &process{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}
	go func() {
		p.err = cmd.Wait()
		closeQuietly(logFile)
		close(p.done)
	}()

	return p, nil
}

type process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	done  chan struct{}
	err   error

	mu sync.Mutex
}

func (p *process) PID() int {
	return p.cmd.Process.Pid
}

func (p *process) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdin.Write(b)
}

func (p *process) Interrupt() error {
	return interrupt(p.cmd.Process)
}

func (p *process) Kill() error {
	if p.Exited() {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *process) Wait(timeout time.Duration) error {
	select {
	case <-p.done:
		return p.err
	case <-time.After(timeout):
		return ErrWaitTimeout
	}
}

func (p *process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func closeQuietly(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}
