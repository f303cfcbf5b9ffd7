package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/publisher"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
)

// Summarize generates notes for one transcript, writes them and optionally publishes them
func (s *implSummarizer) Summarize(ctx context.Context, req Request) (Result, error) {
	content, err := os.ReadFile(req.TranscriptPath)
	if err != nil {
		return Result{}, fmt.Errorf("read transcript: %w", err)
	}

	out := req.OutputPath
	if out == "" {
		out = session.SummaryPathFor(req.TranscriptPath)
	}

	prompt := BuildPrompt(string(content), req.Student, req.Topic, s.opts)
	s.logger.Info(ctx, "Generating summary with %s for %s", s.provider.Name(), filepath.Base(req.TranscriptPath))
	start := time.Now()

	text, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return Result{}, &GenerationError{Provider: s.provider.Name(), Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, &GenerationError{Provider: s.provider.Name(), Err: errors.New("empty response")}
	}

	md := RenderMarkdown(req.Student, req.Topic, text)
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Result{}, fmt.Errorf("create summary dir: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(md), 0644); err != nil {
		return Result{}, fmt.Errorf("write summary: %w", err)
	}

	res := Result{SummaryPath: out}
	s.logger.Info(ctx, "Summary saved: %s (%s)", out, time.Since(start).Round(time.Millisecond))

	if req.Publish {
		res.PageID, res.PublishErr = s.publish(ctx, out, md)
		if res.PublishErr != nil {
			s.logger.Warn(ctx, "Summary kept locally, publishing failed: %v", res.PublishErr)
		}
	}

	return res, nil
}

func (s *implSummarizer) publish(ctx context.Context, summaryPath, md string) (string, error) {
	if s.publisher == nil {
		return "", &publisher.Error{Target: "notion", Err: errors.New("publisher not configured")}
	}

	id, err := s.publisher.Publish(ctx, publisher.Page{Title: PageTitle(summaryPath), Markdown: md})
	if err != nil {
		var perr *publisher.Error
		if !errors.As(err, &perr) {
			err = &publisher.Error{Target: "notion", Err: err}
		}
		return id, err
	}
	return id, nil
}

// RenderMarkdown wraps the provider text with the notes header and lesson metadata
func RenderMarkdown(student, topic, body string) string {
	return fmt.Sprintf("# Lesson notes\n\n**Student:** %s  \n**Topic:** %s\n\n%s\n",
		orPlaceholder(student),
		orPlaceholder(topic),
		strings.TrimSpace(body),
	)
}

// PageTitle is the summary file name without its artifact suffixes.
func PageTitle(summaryPath string) string {
	name := filepath.Base(summaryPath)
	for _, suffix := range []string{".md", ".wav"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}
