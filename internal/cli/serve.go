package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/lesson-recorder/internal/console"
	"github.com/nguyentantai21042004/lesson-recorder/internal/dashboard"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
	"github.com/nguyentantai21042004/lesson-recorder/internal/mcpserver"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/studio"
	"github.com/nguyentantai21042004/lesson-recorder/internal/watcher"
	"github.com/spf13/cobra"
)

const consoleLogName = "console.log"

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process audio files dropped into the inbox directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proc := a.processor(a.openCatalog(ctx))

			handler := func(ctx context.Context, path string) error {
				audioPath, err := proc.Import(ctx, path)
				if err != nil {
					return err
				}
				out, err := proc.Process(ctx, processor.Job{
					AudioPath: audioPath,
					Engine:    a.cfg.Transcribe.Engine,
					Language:  a.cfg.Transcribe.Language,
					Publish:   a.cfg.Summary.Publish,
				})
				if err != nil {
					return err
				}
				if out.PublishErr != nil {
					a.log.Warn(ctx, "Publishing %s failed: %v", out.Session, out.PublishErr)
				}
				return nil
			}

			w, err := watcher.New(a.cfg.Paths.Inbox, handler, a.log, watcher.Options{
				MaxConcurrent: a.cfg.Performance.MaxConcurrent,
			})
			if err != nil {
				return err
			}
			defer w.Stop()

			a.log.Info(ctx, "Watching %s (max %d concurrent), press Ctrl+C to stop", a.cfg.Paths.Inbox, a.cfg.Performance.MaxConcurrent)
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Info(ctx, "Watcher stopped")
			return nil
		},
	}
}

func (a *app) studio(ctx context.Context) studio.Studio {
	cat := a.openCatalog(ctx)
	return studio.New(a.cfg.Paths.Sessions, a.recorder(), a.processor(cat), cat, a.log)
}

// shutdownStudio stops an active recording and waits for background processing.
func shutdownStudio(ctx context.Context, st studio.Studio, log logger.Logger) {
	if st.Status().Recording {
		if _, err := st.Stop(context.WithoutCancel(ctx)); err != nil && !studio.IsConflict(err) {
			log.Error(ctx, "Stop recording: %v", err)
		}
	}
	if st.Busy() {
		log.Info(ctx, "Waiting for processing to finish")
	}
	st.Wait()
}

func newDashboardCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the browser dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Dashboard.Addr
			}

			st := a.studio(ctx)
			srv := dashboard.New(a.cfg, dashboard.Deps{
				Devices: a.lister(),
				Studio:  st,
				Catalog: a.openCatalog(ctx),
			}, a.log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(addr)
			}()
			a.log.Info(ctx, "Dashboard listening on http://%s", addr)

			var runErr error
			select {
			case <-ctx.Done():
				a.log.Info(ctx, "Shutting down dashboard")
				if err := srv.Shutdown(); err != nil {
					a.log.Error(ctx, "Shutdown dashboard: %v", err)
				}
			case err := <-errCh:
				runErr = fmt.Errorf("dashboard: %w", err)
			}

			shutdownStudio(ctx, st, a.log)
			return runErr
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newConsoleCommand(a *app) *cobra.Command {
	opts := console.Options{}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// the terminal belongs to the UI, logs go to a file
			if err := os.MkdirAll(a.cfg.Paths.State, 0755); err != nil {
				return fmt.Errorf("create state dir: %w", err)
			}
			logPath := filepath.Join(a.cfg.Paths.State, consoleLogName)
			f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("open console log: %w", err)
			}
			defer f.Close()
			a.log = logger.NewWithOutput(a.cfg.Logging.Level, a.cfg.Logging.Format, f)

			st := a.studio(ctx)
			m := console.New(a.cfg, st, a.lister(), opts)
			if err := console.Run(ctx, m, a.log); err != nil {
				return err
			}

			if st.Busy() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for processing to finish…")
			}
			shutdownStudio(ctx, st, a.log)
			if last := st.Status(); last.LastOutcome != nil {
				fmt.Fprintln(cmd.OutOrStdout(), last.LastOutcome.SummaryPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Student, "student", "", "student name")
	cmd.Flags().StringVar(&opts.Topic, "topic", "", "lesson topic")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "transcription engine: local or cloud")
	cmd.Flags().StringVar(&opts.Language, "language", "", "transcription language (default from config)")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "publish summaries to Notion")
	cmd.Flags().IntVar(&opts.MicIndex, "mic-index", -1, "preselected microphone device index")
	cmd.Flags().IntVar(&opts.SysIndex, "sys-index", -1, "preselected system audio device index")
	return cmd
}

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the lesson tools over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			srv := mcpserver.New(a.cfg, mcpserver.Deps{
				Devices:       a.lister(),
				Transcriber:   a.transcriber(),
				NewSummarizer: a.newSummarizer,
				Catalog:       a.openCatalog(ctx),
			}, a.log)
			return srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
