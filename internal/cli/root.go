// Package cli wires the components into the lesson command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/pkg/executor"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	a := newApp(executor.New(), os.LookupEnv)
	root := newRootCommand(a)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "lesson",
		Short:         "Record, transcribe and summarize music lessons",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		newDevicesCommand(a),
		newRecordCommand(a),
		newSessionCommand(a),
		newTranscribeCommand(a),
		newSummarizeCommand(a),
		newPublishCommand(a),
		newExportCommand(a),
		newHistoryCommand(a),
		newWatchCommand(a),
		newDashboardCommand(a),
		newConsoleCommand(a),
		newMCPCommand(a),
	)
	return root
}

// warn prints a non-fatal problem, such as a failed publish, to stderr.
func warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}

func loadConfig(path string, lookup func(string) (string, bool)) (*config.Config, error) {
	cfg, err := config.Loader{Lookup: lookup, Optional: true}.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
