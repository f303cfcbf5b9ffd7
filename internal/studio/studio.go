package studio

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/processor"
	"github.com/nguyentantai21042004/lesson-recorder/internal/recorder"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
)

func (s *implStudio) Start(ctx context.Context, req StartRequest) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder.Active() != nil {
		return s.statusLocked(), recorder.ErrAlreadyRecording
	}

	sess := session.New(s.sessionsDir, s.now())
	if _, err := s.recorder.Start(ctx, recorder.StartRequest{
		MicIndex:   req.MicIndex,
		SysIndex:   req.SysIndex,
		OutputPath: sess.AudioPath(),
	}); err != nil {
		s.lastErr = err.Error()
		return s.statusLocked(), err
	}

	s.pending = &processor.Job{
		AudioPath: sess.AudioPath(),
		Student:   req.Student,
		Topic:     req.Topic,
		Engine:    req.Engine,
		Language:  req.Language,
		Publish:   req.Publish,
	}
	s.lastErr = ""
	s.lastWarn = ""

	if s.catalog != nil {
		rec := catalog.Record{Name: sess.Name, AudioPath: sess.AudioPath(), Student: req.Student, Topic: req.Topic, Engine: req.Engine, CreatedAt: sess.CreatedAt}
		if err := s.catalog.Upsert(ctx, rec); err != nil {
			s.logger.Warn(ctx, "Catalog update failed: %v", err)
		}
	}

	return s.statusLocked(), nil
}

func (s *implStudio) Stop(ctx context.Context) (Status, error) {
	s.mu.Lock()
	h := s.recorder.Active()
	if h == nil {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, recorder.ErrNotRecording
	}
	job := s.pending
	s.pending = nil
	s.stopping = true
	s.mu.Unlock()

	// ffmpeg may take a while to finalize, status reads must not wait for it
	res, err := s.recorder.Stop(ctx, h)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopping = false

	if err != nil {
		s.lastErr = err.Error()
		return s.statusLocked(), err
	}
	if job == nil {
		job = &processor.Job{AudioPath: res.Path}
	}

	if s.catalog != nil {
		if err := s.catalog.MarkStage(ctx, session.FromAudio(res.Path).Name, catalog.StageRecorded, ""); err != nil {
			s.logger.Warn(ctx, "Catalog update failed: %v", err)
		}
	}

	s.processing++
	s.wg.Add(1)
	go s.run(*job)

	return s.statusLocked(), nil
}

// run processes one stopped recording. It outlives the request that started it.
func (s *implStudio) run(job processor.Job) {
	defer s.wg.Done()
	ctx := context.Background()

	s.runMu.Lock()
	out, err := s.processor.Process(ctx, job)
	s.runMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing--

	if err != nil {
		s.logger.Error(ctx, "Processing %s failed: %v", job.AudioPath, err)
		s.lastErr = err.Error()
		return
	}
	s.last = &out
	if out.PublishErr != nil {
		s.lastWarn = out.PublishErr.Error()
	}
}

func (s *implStudio) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *implStudio) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping || s.recorder.Active() != nil || s.processing > 0
}

func (s *implStudio) Wait() {
	s.wg.Wait()
}

func (s *implStudio) statusLocked() Status {
	st := Status{
		Processing:  s.stopping || s.processing > 0,
		LastError:   s.lastErr,
		LastWarning: s.lastWarn,
		LastOutcome: s.last,
	}
	if h := s.recorder.Active(); h != nil {
		started := h.StartedAt
		st.Recording = true
		st.Session = session.FromAudio(h.Path).Name
		st.StartedAt = &started
		st.ElapsedSeconds = h.Elapsed(s.now()).Seconds()
	}
	return st
}

// IsConflict reports whether err is a recording state conflict rather than a failure.
func IsConflict(err error) bool {
	return errors.Is(err, recorder.ErrAlreadyRecording) || errors.Is(err, recorder.ErrNotRecording)
}
