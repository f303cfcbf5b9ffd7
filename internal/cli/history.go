package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			infos, err := session.Scan(a.cfg.Paths.Sessions)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(infos) {
				infos = infos[:limit]
			}
			if len(infos) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No sessions in %s.\n", a.cfg.Paths.Sessions)
				return nil
			}

			records := map[string]catalog.Record{}
			if cat := a.openCatalog(ctx); cat != nil {
				recs, err := cat.List(ctx, 0)
				if err != nil {
					a.log.Warn(ctx, "Catalog list failed: %v", err)
				}
				for _, r := range recs {
					records[r.Name] = r
				}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Session", "Student", "Topic", "Audio", "Transcript", "Summary", "Notion")
			for _, info := range infos {
				r := records[info.Name]
				notion := r.PublishedPage
				if notion == "" && r.LastError != "" {
					notion = "failed"
				}
				t.Row(info.Name, r.Student, r.Topic, humanBytes(info.AudioBytes), yesNo(info.HasTranscript), yesNo(info.HasSummary), notion)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many sessions (0 for all)")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
