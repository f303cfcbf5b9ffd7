//go:build windows

package executor

import "os"

// Windows has no SIGINT for child processes; killing is the only option.
func interrupt(p *os.Process) error {
	return p.Kill()
}
