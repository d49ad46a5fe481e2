// Package history keeps a SQLite log of harness runs: one row per run with
// the mode, outcome, diff count and artifact location. The `snapgold history`
// command reads it back for triage.
//
// The caller must blank-import a driver registering "sqlite":
//
//	import _ "modernc.org/sqlite"
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Schema for the runs table.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  INTEGER NOT NULL,
	golden_path TEXT NOT NULL,
	mode        TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	diff_count  INTEGER NOT NULL DEFAULT 0,
	diff_pct    REAL NOT NULL DEFAULT 0,
	diff_path   TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_golden ON runs(golden_path);
`

// Entry is one recorded run.
type Entry struct {
	ID          int64
	StartedAt   time.Time
	GoldenPath  string
	Mode        string // "verify" or "approve"
	Outcome     string // "match", "pixel_mismatch", "dimension_mismatch", "approved", "error"
	DiffCount   int
	DiffPercent float64
	DiffPath    string
	Duration    time.Duration
}

// Store persists run entries to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path with WAL and
// busy-timeout pragmas applied, and ensures the schema exists.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("history: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts one run entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (started_at, golden_path, mode, outcome, diff_count, diff_pct, diff_path, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.StartedAt.UnixMilli(), e.GoldenPath, e.Mode, e.Outcome,
		e.DiffCount, e.DiffPercent, e.DiffPath, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, golden_path, mode, outcome, diff_count, diff_pct, diff_path, duration_ms
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedMs, durMs int64
		if err := rows.Scan(&e.ID, &startedMs, &e.GoldenPath, &e.Mode, &e.Outcome,
			&e.DiffCount, &e.DiffPercent, &e.DiffPath, &durMs); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMs)
		e.Duration = time.Duration(durMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
