package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/config"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
	"github.com/nguyentantai21042004/lesson-recorder/internal/summarizer"
)

// Process orchestrates the transcription and summary of one recording
func (p *implProcessor) Process(ctx context.Context, job Job) (Outcome, error) {
	startTime := time.Now()
	sess := session.FromAudio(job.AudioPath)
	out := Outcome{Session: sess.Name}

	engine, err := config.NormalizeEngine(job.Engine)
	if err != nil {
		return out, err
	}
	if job.Language == "" {
		job.Language = p.cfg.Transcribe.Language
	}

	// every credential the run needs is checked before the first network call
	if err := p.cfg.RequireCredentials(engine, p.cfg.Summary.Provider, job.Publish); err != nil {
		return out, err
	}

	log := p.logger.With(map[string]interface{}{"session": sess.Name})
	log.Info(ctx, "Processing session %s (engine=%s)", sess.Name, engine)

	p.track(ctx, func(c catalog.Catalog) error {
		return c.Upsert(ctx, catalog.Record{
			Name:      sess.Name,
			AudioPath: job.AudioPath,
			Student:   job.Student,
			Topic:     job.Topic,
			Engine:    engine,
			CreatedAt: sess.CreatedAt,
		})
	})

	// Step 1: Transcribe audio
	transcriptPath, err := p.transcriber.Transcribe(ctx, job.AudioPath, engine, job.Language)
	if err != nil {
		p.fail(ctx, sess.Name, err)
		return out, fmt.Errorf("transcribe: %w", err)
	}
	out.TranscriptPath = transcriptPath
	p.track(ctx, func(c catalog.Catalog) error {
		return c.MarkStage(ctx, sess.Name, catalog.StageTranscribed, "")
	})

	// Step 2: Summarize the transcript
	sum, err := p.newSummarizer(ctx, job.Publish)
	if err != nil {
		p.fail(ctx, sess.Name, err)
		return out, fmt.Errorf("summarize: %w", err)
	}
	res, err := sum.Summarize(ctx, summarizer.Request{
		TranscriptPath: transcriptPath,
		Student:        job.Student,
		Topic:          job.Topic,
		Publish:        job.Publish,
	})
	if err != nil {
		p.fail(ctx, sess.Name, err)
		return out, fmt.Errorf("summarize: %w", err)
	}
	out.SummaryPath = res.SummaryPath
	out.PageID = res.PageID
	out.PublishErr = res.PublishErr
	p.track(ctx, func(c catalog.Catalog) error {
		return c.MarkStage(ctx, sess.Name, catalog.StageSummarized, "")
	})

	// Step 3: Record publish result
	switch {
	case res.PublishErr != nil:
		p.fail(ctx, sess.Name, res.PublishErr)
	case res.PageID != "":
		p.track(ctx, func(c catalog.Catalog) error {
			return c.MarkStage(ctx, sess.Name, catalog.StagePublished, res.PageID)
		})
	}

	log.Info(ctx, "Session %s processed in %s: %s", sess.Name, time.Since(startTime).Round(time.Millisecond), out.SummaryPath)
	return out, nil
}

// track applies a catalog update. Catalog failures never fail the pipeline.
func (p *implProcessor) track(ctx context.Context, fn func(catalog.Catalog) error) {
	if p.catalog == nil {
		return
	}
	if err := fn(p.catalog); err != nil {
		p.logger.Warn(ctx, "Catalog update failed: %v", err)
	}
}

func (p *implProcessor) fail(ctx context.Context, name string, cause error) {
	p.track(ctx, func(c catalog.Catalog) error {
		return c.MarkStage(ctx, name, catalog.StageFailed, cause.Error())
	})
}
