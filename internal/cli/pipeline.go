package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/publisher"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/nguyentantai21042004/lesson-recorder/internal/summarizer"
	"github.com/spf13/cobra"
)

func newTranscribeCommand(a *app) *cobra.Command {
	var audioPath, engine, language string

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe an audio file into <audio>.txt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if engine == "" {
				engine = a.cfg.Transcribe.Engine
			}
			if language == "" {
				language = a.cfg.Transcribe.Language
			}

			transcriptPath, err := a.transcriber().Transcribe(ctx, audioPath, engine, language)
			if err != nil {
				return err
			}
			a.markStage(ctx, session.FromAudio(audioPath).Name, catalog.StageTranscribed, "")

			fmt.Fprintln(cmd.OutOrStdout(), transcriptPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&audioPath, "audio", "", "audio file to transcribe")
	cmd.Flags().StringVar(&engine, "engine", "", "transcription engine: local or cloud")
	cmd.Flags().StringVar(&language, "language", "", "transcription language (default from config)")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}

func newSummarizeCommand(a *app) *cobra.Command {
	var transcriptPath, student, topic, out string
	var publish bool

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Write lesson notes for a transcript, optionally publishing them to Notion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			publish = publish || a.cfg.Summary.Publish

			sum, err := a.newSummarizer(ctx, publish)
			if err != nil {
				return err
			}
			res, err := sum.Summarize(ctx, summarizer.Request{
				TranscriptPath: transcriptPath,
				Student:        student,
				Topic:          topic,
				OutputPath:     out,
				Publish:        publish,
			})
			if err != nil {
				return err
			}

			name := session.FromTranscript(transcriptPath).Name
			a.markStage(ctx, name, catalog.StageSummarized, "")
			fmt.Fprintln(cmd.OutOrStdout(), res.SummaryPath)

			switch {
			case res.PublishErr != nil:
				a.markStage(ctx, name, catalog.StageFailed, res.PublishErr.Error())
				warn(cmd.ErrOrStderr(), "%v (the summary was saved locally)", res.PublishErr)
			case res.PageID != "":
				a.markStage(ctx, name, catalog.StagePublished, res.PageID)
				fmt.Fprintf(cmd.ErrOrStderr(), "Published to Notion: %s\n", res.PageID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "transcript file to summarize")
	cmd.Flags().StringVar(&student, "student", "", "student name")
	cmd.Flags().StringVar(&topic, "topic", "", "lesson topic")
	cmd.Flags().StringVar(&out, "out", "", "summary path (default: transcript path with .md)")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the summary to Notion")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}

func newPublishCommand(a *app) *cobra.Command {
	var mdPath, title string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an existing summary to Notion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(mdPath)
			if err != nil {
				return fmt.Errorf("read summary: %w", err)
			}
			if title == "" {
				title = summarizer.PageTitle(mdPath)
			}

			pub, err := publisher.NewNotion(a.cfg, a.log)
			if err != nil {
				return err
			}
			pageID, err := pub.Publish(ctx, publisher.Page{Title: title, Markdown: string(data)})
			if err != nil {
				return err
			}

			name := session.FromTranscript(strings.TrimSuffix(mdPath, session.SummarySuffix) + session.TranscriptSuffix).Name
			a.markStage(ctx, name, catalog.StagePublished, pageID)
			fmt.Fprintln(cmd.OutOrStdout(), pageID)
			return nil
		},
	}
	cmd.Flags().StringVar(&mdPath, "md", "", "summary markdown file")
	cmd.Flags().StringVar(&title, "title", "", "page title (default: summary file name)")
	_ = cmd.MarkFlagRequired("md")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var summaryPath, transcriptPath, outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a summary and its transcript as DOCX documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.Paths.Exports
			}
			if transcriptPath == "" {
				transcriptPath = siblingTranscript(summaryPath)
			}

			exp := summarizer.New(summarizer.OptionsFromConfig(a.cfg), nil, nil, a.log)
			files, err := exp.Export(cmd.Context(), summarizer.ExportRequest{
				SummaryPath:    summaryPath,
				TranscriptPath: transcriptPath,
				OutDir:         outDir,
			})
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&summaryPath, "summary", "", "summary markdown file")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "transcript file (default: the summary's sibling .txt)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory for the DOCX files (default from config)")
	_ = cmd.MarkFlagRequired("summary")
	return cmd
}

// siblingTranscript returns the transcript next to a session summary, or "" when absent.
func siblingTranscript(summaryPath string) string {
	if !strings.HasSuffix(summaryPath, session.SummarySuffix) {
		return ""
	}
	path := strings.TrimSuffix(summaryPath, session.SummarySuffix) + session.TranscriptSuffix
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// markStage records command progress in the catalog. Failures are only logged.
func (a *app) markStage(ctx context.Context, name string, stage catalog.Stage, detail string) {
	cat := a.openCatalog(ctx)
	if cat == nil {
		return
	}
	if err := cat.MarkStage(ctx, name, stage, detail); err != nil {
		a.log.Warn(ctx, "Catalog update failed: %v", err)
	}
}
