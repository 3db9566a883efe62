// Package store persists transcription history in a local SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed dictation.
type Record struct {
	ID              string
	OriginalText    string
	EnhancedText    string // empty when enhancement was off or failed
	TranscriptionMs int64
	EnhancementMs   int64
	ModelName       string
	PromptName      string
	AudioPath       string
	DurationS       float64
	CreatedAt       time.Time
}

// FinalText returns the text that was delivered: the enhanced version
// when present, the original otherwise.
func (r Record) FinalText() string {
	if r.EnhancedText != "" {
		return r.EnhancedText
	}
	return r.OriginalText
}

type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the per-user history database location.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "voiceink", "history.sqlite")
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "voiceink", "history.sqlite")
	}
	return filepath.Join(home, ".local", "share", "voiceink", "history.sqlite")
}

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id               TEXT PRIMARY KEY,
	original_text    TEXT NOT NULL,
	enhanced_text    TEXT,
	transcription_ms INTEGER NOT NULL DEFAULT 0,
	enhancement_ms   INTEGER NOT NULL DEFAULT 0,
	model_name       TEXT NOT NULL DEFAULT '',
	prompt_name      TEXT NOT NULL DEFAULT '',
	audio_path       TEXT NOT NULL DEFAULT '',
	duration_s       REAL NOT NULL DEFAULT 0,
	created_at       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at
	ON transcriptions (created_at DESC);
`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts one completed dictation. CreatedAt defaults to now.
func (s *Store) Save(ctx context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	var enhanced sql.NullString
	if r.EnhancedText != "" {
		enhanced = sql.NullString{String: r.EnhancedText, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcriptions
			(id, original_text, enhanced_text, transcription_ms, enhancement_ms,
			 model_name, prompt_name, audio_path, duration_s, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.OriginalText, enhanced, r.TranscriptionMs, r.EnhancementMs,
		r.ModelName, r.PromptName, r.AudioPath, r.DurationS, unixFloat(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transcription: %w", err)
	}
	return nil
}

// Latest returns the most recent dictation, or nil when the history
// is empty.
func (s *Store) Latest(ctx context.Context) (*Record, error) {
	rows, err := s.list(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// List returns up to limit dictations, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	return s.list(ctx, limit)
}

func (s *Store) list(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_text, enhanced_text, transcription_ms, enhancement_ms,
		       model_name, prompt_name, audio_path, duration_s, created_at
		FROM transcriptions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcriptions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var enhanced sql.NullString
		var createdAt float64
		if err := rows.Scan(&r.ID, &r.OriginalText, &enhanced, &r.TranscriptionMs,
			&r.EnhancementMs, &r.ModelName, &r.PromptName, &r.AudioPath,
			&r.DurationS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		if enhanced.Valid {
			r.EnhancedText = enhanced.String
		}
		r.CreatedAt = timeFromUnix(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
