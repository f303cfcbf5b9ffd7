package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/lesson-recorder/internal/catalog"
	"github.com/nguyentantai21042004/lesson-recorder/internal/session"
)

// Import moves an inbox file into the sessions directory as a new session
func (p *implProcessor) Import(ctx context.Context, srcPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Sessions, 0755); err != nil {
		return "", fmt.Errorf("create sessions dir: %w", err)
	}

	sess, err := p.freeSession()
	if err != nil {
		return "", err
	}
	dst := sess.AudioPath()

	if strings.EqualFold(filepath.Ext(srcPath), session.AudioSuffix) {
		if err := p.moveFile(ctx, srcPath, dst); err != nil {
			return "", err
		}
	} else {
		if err := p.convertAudio(ctx, srcPath, dst); err != nil {
			p.cleanupTempFile(ctx, dst)
			return "", err
		}
		p.cleanupTempFile(ctx, srcPath)
	}

	p.track(ctx, func(c catalog.Catalog) error {
		if err := c.Upsert(ctx, catalog.Record{Name: sess.Name, AudioPath: dst, CreatedAt: sess.CreatedAt}); err != nil {
			return err
		}
		return c.MarkStage(ctx, sess.Name, catalog.StageRecorded, "")
	})

	p.logger.Info(ctx, "Imported %s as %s", filepath.Base(srcPath), sess.Name)
	return dst, nil
}

// freeSession names a session after the current second, moving forward until the name is unused
func (p *implProcessor) freeSession() (session.Session, error) {
	now := p.now()
	for i := 0; i < 60; i++ {
		sess := session.New(p.cfg.Paths.Sessions, now.Add(time.Duration(i)*time.Second))
		if _, err := os.Stat(sess.AudioPath()); errors.Is(err, os.ErrNotExist) {
			return sess, nil
		}
	}
	return session.Session{}, fmt.Errorf("no free session name near %s", now.Format(time.RFC3339))
}

// moveFile renames src to dst, copying when they are on different filesystems
func (p *implProcessor) moveFile(ctx context.Context, src, dst string) error {
	p.logger.Info(ctx, "Moving to sessions folder: %s -> %s", src, dst)

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("move to sessions: %w", err)
	}
	p.cleanupTempFile(ctx, src)
	return nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("write destination: %w", err)
	}
	return out.Close()
}

// cleanupTempFile removes a file, logs warning if fails
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn(ctx, "Failed to remove %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Removed: %s", filePath)
	}
}
