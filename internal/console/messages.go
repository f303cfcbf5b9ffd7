package console

import (
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
)

// DevicesLoadedMsg carries the result of a device query.
type DevicesLoadedMsg struct {
	Devices []devices.Device
	Err     error
}

// TickMsg refreshes the studio status once a second.
type TickMsg time.Time

// StartedMsg carries the result of starting a recording.
type StartedMsg struct {
	Status studio.Status
	Err    error
}

// StoppedMsg carries the result of stopping a recording.
type StoppedMsg struct {
	Status studio.Status
	Err    error
}

// PreviewMsg carries the head of a freshly written summary.
type PreviewMsg struct {
	Session string
	Text    string
	Err     error
}
