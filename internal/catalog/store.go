package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	name TEXT PRIMARY KEY,
	audio_path TEXT NOT NULL DEFAULT '',
	student TEXT NOT NULL DEFAULT '',
	topic TEXT NOT NULL DEFAULT '',
	engine TEXT NOT NULL DEFAULT '',
	created_at REAL NOT NULL,
	recorded_at REAL,
	transcribed_at REAL,
	summarized_at REAL,
	published_page TEXT NOT NULL DEFAULT '',
	last_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS sessions_created_at ON sessions(created_at DESC);
`

const selectColumns = `name, audio_path, student, topic, engine, created_at,
	recorded_at, transcribed_at, summarized_at, published_page, last_error`

func (c *implCatalog) Upsert(ctx context.Context, rec Record) error {
	if rec.Name == "" {
		return errors.New("catalog: record name is required")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = c.now()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO sessions (name, audio_path, student, topic, engine, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			audio_path = CASE WHEN excluded.audio_path != '' THEN excluded.audio_path ELSE sessions.audio_path END,
			student = CASE WHEN excluded.student != '' THEN excluded.student ELSE sessions.student END,
			topic = CASE WHEN excluded.topic != '' THEN excluded.topic ELSE sessions.topic END,
			engine = CASE WHEN excluded.engine != '' THEN excluded.engine ELSE sessions.engine END
	`, rec.Name, rec.AudioPath, rec.Student, rec.Topic, rec.Engine, unixTime(created))
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", rec.Name, err)
	}
	return nil
}

func (c *implCatalog) MarkStage(ctx context.Context, name string, stage Stage, detail string) error {
	var query string
	args := []interface{}{unixTime(c.now())}

	switch stage {
	case StageRecorded:
		query = `UPDATE sessions SET recorded_at = ?, last_error = '' WHERE name = ?`
	case StageTranscribed:
		query = `UPDATE sessions SET transcribed_at = ?, last_error = '' WHERE name = ?`
	case StageSummarized:
		query = `UPDATE sessions SET summarized_at = ?, last_error = '' WHERE name = ?`
	case StagePublished:
		query = `UPDATE sessions SET published_page = ? WHERE name = ?`
		args = []interface{}{detail}
	case StageFailed:
		query = `UPDATE sessions SET last_error = ? WHERE name = ?`
		args = []interface{}{detail}
	default:
		return fmt.Errorf("catalog: unknown stage %q", stage)
	}
	args = append(args, name)

	if err := c.Upsert(ctx, Record{Name: name}); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark %s %s: %w", name, stage, err)
	}
	return nil
}

func (c *implCatalog) Get(ctx context.Context, name string) (Record, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM sessions WHERE name = ?`, name)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return rec, err
}

func (c *implCatalog) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM sessions ORDER BY created_at DESC, name DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (c *implCatalog) Close() error {
	return c.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec                               Record
		createdAt                         float64
		recordedAt, transcribedAt, summAt sql.NullFloat64
	)
	err := s.Scan(&rec.Name, &rec.AudioPath, &rec.Student, &rec.Topic, &rec.Engine, &createdAt,
		&recordedAt, &transcribedAt, &summAt, &rec.PublishedPage, &rec.LastError)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, fmt.Errorf("scan session: %w", err)
	}

	rec.CreatedAt = timeFromUnix(createdAt)
	rec.RecordedAt = nullTime(recordedAt)
	rec.TranscribedAt = nullTime(transcribedAt)
	rec.SummarizedAt = nullTime(summAt)
	return rec, nil
}

func unixTime(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func timeFromUnix(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func nullTime(v sql.NullFloat64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timeFromUnix(v.Float64)
	return &t
}
