package executor

import (
	"context"
	"time"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// Probe returns combined stdout and stderr even when the command exits non-zero.
	Probe(ctx context.Context, name string, args ...string) (string, error)
	// Start launches a long-running command and returns without waiting for it.
	Start(opts StartOptions, name string, args ...string) (Process, error)
}

// StartOptions configures a long-running command.
type StartOptions struct {
	// LogPath receives the command's stdout and stderr. Empty discards them.
	LogPath string
	// Env is appended to the current environment.
	Env []string
}

// Process is a running command started by Executor.Start.
type Process interface {
	PID() int
	// Write sends data to the process stdin.
	Write(p []byte) (int, error)
	// Interrupt asks the process to stop (SIGINT where supported).
	Interrupt() error
	Kill() error
	// Wait blocks until the process exits or timeout elapses. A timeout returns ErrWaitTimeout.
	Wait(timeout time.Duration) error
	// Exited reports whether the process has already exited.
	Exited() bool
}
