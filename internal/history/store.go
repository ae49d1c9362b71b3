// Package history persists a journal of completed download runs backed by
// SQLite. Recording is best-effort from the pipeline's point of view; a
// write failure never affects the run it describes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ytcourier/internal/config"
)

// ItemStatus values recorded per run item.
const (
	ItemDelivered = "delivered"
	ItemFailed    = "failed"
)

// Item is the journal entry for one URL within a run.
type Item struct {
	URL       string
	Title     string
	Status    string
	Detail    string
	SizeBytes int64
}

// Run is the journal entry for one batch download run.
type Run struct {
	ID         int64
	ChatID     int64
	UserID     int64
	Quality    string
	Requested  int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []Item
}

// Store manages run-journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.HistoryDBPath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun writes a run and its items in one transaction and returns the
// assigned run ID.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            chat_id, user_id, quality, requested, succeeded, failed,
            started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ChatID,
		run.UserID,
		run.Quality,
		run.Requested,
		run.Succeeded,
		run.Failed,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for i, item := range run.Items {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_items (
                run_id, position, url, title, status, detail, size_bytes
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID,
			i,
			item.URL,
			item.Title,
			item.Status,
			item.Detail,
			item.SizeBytes,
		); err != nil {
			return 0, fmt.Errorf("insert run item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs ordered newest first, items included.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, chat_id, user_id, quality, requested, succeeded, failed,
                started_at, finished_at
         FROM runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID, &run.ChatID, &run.UserID, &run.Quality,
			&run.Requested, &run.Succeeded, &run.Failed,
			&started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		items, err := s.runItems(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Items = items
	}
	return runs, nil
}

func (s *Store) runItems(ctx context.Context, runID int64) ([]Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT url, title, status, detail, size_bytes
         FROM run_items WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.URL, &item.Title, &item.Status, &item.Detail, &item.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run items: %w", err)
	}
	return items, nil
}
