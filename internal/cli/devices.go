package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nguyentantai21042004/lesson-recorder/internal/devices"
	"github.com/spf13/cobra"
)

func newDevicesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices and their indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			devs, err := a.lister().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(devs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audio input devices found.")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Index", "Name")
			for _, d := range devs {
				t.Row(strconv.Itoa(d.Index), d.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

// checkDevices confirms both indices name listed audio inputs.
func (a *app) checkDevices(ctx context.Context, micIndex, sysIndex int) error {
	devs, err := a.lister().List(ctx)
	if err != nil {
		return err
	}
	for _, idx := range []int{micIndex, sysIndex} {
		if _, ok := devices.Find(devs, idx); !ok {
			return fmt.Errorf("unknown audio device index %d (run `lesson devices`)", idx)
		}
	}
	return nil
}
