// Package console is the terminal dashboard: device pickers, a record toggle,
// live elapsed time and a preview of the last summary.
package console

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
)

// Options preset the lesson metadata and the initially selected devices.
// A negative index leaves the picker on the first device.
type Options struct {
	Student  string
	Topic    string
	Engine   string
	Language string
	Publish  bool
	MicIndex int
	SysIndex int
}

// New creates the root model
func New(cfg *config.Config, st studio.Studio, lister devices.Lister, opts Options) Model {
	return Model{
		cfg:    cfg,
		studio: st,
		lister: lister,
		opts:   opts,
		status: st.Status(),
	}
}

// Run shows the console until the user quits. A recording still active on exit
// is stopped so its audio is finalized and processed.
func Run(ctx context.Context, m Model, log logger.Logger) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, runErr := p.Run()

	if m.studio.Status().Recording {
		log.Info(ctx, "Stopping the active recording before exit")
		if _, err := m.studio.Stop(context.Background()); err != nil && !studio.IsConflict(err) {
			log.Error(ctx, "Stop recording: %v", err)
		}
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("console: %w", runErr)
	}
	return nil
}
