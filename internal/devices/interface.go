package devices

import (
	"context"
	"errors"
)

// ErrQuery is returned when the audio subsystem cannot be queried or its output
// cannot be understood. An empty device list is not an error.
var ErrQuery = errors.New("device query failed")

// Device is one audio input as numbered by the capture backend.
type Device struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Lister enumerates audio input devices. Every call queries the platform again.
type Lister interface {
	List(ctx context.Context) ([]Device, error)
}
