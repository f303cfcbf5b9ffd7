package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/recorder"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/spf13/cobra"
)

func newRecordCommand(a *app) *cobra.Command {
	var micIndex, sysIndex int
	var out string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record microphone and system audio into one WAV file until Enter or Ctrl+C",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess := session.New(a.cfg.Paths.Sessions, time.Now())
			if out == "" {
				out = sess.AudioPath()
			} else {
				sess = session.FromAudio(out)
			}

			res, err := a.record(ctx, cmd, micIndex, sysIndex, out)
			if err != nil {
				return err
			}
			a.trackRecorded(ctx, catalog.Record{Name: sess.Name, AudioPath: res.Path, CreatedAt: sess.CreatedAt})

			fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			return nil
		},
	}
	cmd.Flags().IntVar(&micIndex, "mic-index", -1, "microphone device index")
	cmd.Flags().IntVar(&sysIndex, "sys-index", -1, "system audio device index")
	cmd.Flags().StringVar(&out, "out", "", "output WAV path (default: a new session in the sessions directory)")
	_ = cmd.MarkFlagRequired("mic-index")
	_ = cmd.MarkFlagRequired("sys-index")
	return cmd
}

func newSessionCommand(a *app) *cobra.Command {
	var micIndex, sysIndex int
	var student, topic, engine, language string
	var publish bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record a lesson, then transcribe and summarize it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if engine == "" {
				engine = a.cfg.Transcribe.Engine
			}
			eng, err := config.NormalizeEngine(engine)
			if err != nil {
				return err
			}
			publish = publish || a.cfg.Summary.Publish
			// fail before recording rather than after an hour-long lesson
			if err := a.cfg.RequireCredentials(eng, a.cfg.Summary.Provider, publish); err != nil {
				return err
			}

			sess := session.New(a.cfg.Paths.Sessions, time.Now())
			res, err := a.record(ctx, cmd, micIndex, sysIndex, sess.AudioPath())
			if err != nil {
				return err
			}

			cat := a.openCatalog(ctx)
			a.trackRecorded(ctx, catalog.Record{
				Name:      sess.Name,
				AudioPath: res.Path,
				Student:   student,
				Topic:     topic,
				Engine:    eng,
				CreatedAt: sess.CreatedAt,
			})

			// Ctrl+C ends the recording, processing still runs to completion
			fmt.Fprintln(cmd.ErrOrStderr(), "Transcribing and summarizing…")
			outcome, err := a.processor(cat).Process(context.WithoutCancel(ctx), processor.Job{
				AudioPath: res.Path,
				Student:   student,
				Topic:     topic,
				Engine:    eng,
				Language:  language,
				Publish:   publish,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Audio:      %s\n", res.Path)
			fmt.Fprintf(w, "Transcript: %s\n", outcome.TranscriptPath)
			fmt.Fprintf(w, "Summary:    %s\n", outcome.SummaryPath)
			if outcome.PageID != "" {
				fmt.Fprintf(w, "Notion:     %s\n", outcome.PageID)
			}
			if outcome.PublishErr != nil {
				warn(cmd.ErrOrStderr(), "%v (the summary was saved locally)", outcome.PublishErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&micIndex, "mic-index", -1, "microphone device index")
	cmd.Flags().IntVar(&sysIndex, "sys-index", -1, "system audio device index")
	cmd.Flags().StringVar(&student, "student", "", "student name")
	cmd.Flags().StringVar(&topic, "topic", "", "lesson topic")
	cmd.Flags().StringVar(&engine, "engine", "", "transcription engine: local or cloud")
	cmd.Flags().StringVar(&language, "language", "", "transcription language (default from config)")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the summary to Notion")
	_ = cmd.MarkFlagRequired("mic-index")
	_ = cmd.MarkFlagRequired("sys-index")
	return cmd
}

// record captures audio until Enter is pressed or ctx is cancelled.
func (a *app) record(ctx context.Context, cmd *cobra.Command, micIndex, sysIndex int, out string) (recorder.Result, error) {
	if micIndex < 0 || sysIndex < 0 {
		return recorder.Result{}, recorder.ErrInvalidDevice
	}
	if err := a.checkDevices(ctx, micIndex, sysIndex); err != nil {
		return recorder.Result{}, err
	}

	rec := a.recorder()
	h, err := rec.Start(ctx, recorder.StartRequest{MicIndex: micIndex, SysIndex: sysIndex, OutputPath: out})
	if err != nil {
		return recorder.Result{}, fmt.Errorf("start recording: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Recording to %s. Press Enter (or Ctrl+C) to stop.\n", h.Path)

	waitForStop(ctx, cmd.InOrStdin())

	res, err := rec.Stop(context.WithoutCancel(ctx), h)
	if err != nil {
		return res, fmt.Errorf("stop recording: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %s (%s)\n", res.Path, res.Duration.Round(time.Second))
	return res, nil
}

// waitForStop returns on the first line read from in or when ctx is done.
// A closed stdin does not stop the recording.
func waitForStop(ctx context.Context, in io.Reader) {
	enter := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(in).ReadString('\n'); err == nil || !errors.Is(err, io.EOF) {
			close(enter)
		}
	}()

	select {
	case <-ctx.Done():
	case <-enter:
	}
}

func (a *app) trackRecorded(ctx context.Context, rec catalog.Record) {
	cat := a.openCatalog(ctx)
	if cat == nil {
		return
	}
	if err := cat.Upsert(ctx, rec); err != nil {
		a.log.Warn(ctx, "Catalog update failed: %v", err)
		return
	}
	if err := cat.MarkStage(ctx, rec.Name, catalog.StageRecorded, ""); err != nil {
		a.log.Warn(ctx, "Catalog update failed: %v", err)
	}
}
