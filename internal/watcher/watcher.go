package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/lesson-recorder/internal/logger"
)

type implWatcher struct {
	inboxDir      string
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	pollInterval  time.Duration
	slots         *slots
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Start begins monitoring the inbox directory for new recordings
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inboxDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(AudioExtensions, ", "))

	if err := w.handleExisting(ctx); err != nil {
		w.logger.Warn(ctx, "Scanning existing inbox files failed: %v", err)
	}

	err := w.watch(ctx)

	// handlers already running finish whatever ended the loop
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "Inbox watcher stopped")
	return err
}

func (w *implWatcher) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Only process CREATE events, which include files moved into the inbox
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isAudioFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)
			if err := w.dispatch(ctx, event.Name); err != nil {
				return err
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) handleExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(w.inboxDir, e.Name())
		if e.IsDir() || !isAudioFile(path) {
			continue
		}
		w.logger.Info(ctx, "Found waiting recording: %s", path)
		if err := w.dispatch(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// dispatch blocks for a free slot, then handles the file in a goroutine
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	if !w.claim(path) {
		w.logger.Debug(ctx, "Already handling %s", path)
		return nil
	}

	free, err := w.slots.take(ctx)
	if err != nil {
		w.release(path)
		return err
	}
	w.logger.Debug(ctx, "Handling %s (%d/%d slots busy)", filepath.Base(path), w.slots.busy(), w.maxConcurrent)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer free()
		defer w.release(path)

		log := w.logger.With(map[string]interface{}{"file": filepath.Base(path)})
		if err := w.waitUntilWritten(ctx, path); err != nil {
			log.Error(ctx, "File never settled %s: %v", path, err)
			return
		}
		if err := w.handler(ctx, path); err != nil {
			log.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
	return nil
}

// waitUntilWritten returns once the file size is unchanged between two polls
func (w *implWatcher) waitUntilWritten(ctx context.Context, path string) error {
	last := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() > 0 && info.Size() == last {
			return nil
		}
		last = info.Size()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inFlight[path]; ok {
		return false
	}
	w.inFlight[path] = struct{}{}
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}

// isAudioFile checks the extension and skips hidden and partial files
func isAudioFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, format := range AudioExtensions {
		if ext == format {
			return true
		}
	}
	return false
}
