package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/mastodon-sitemap/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            account TEXT NOT NULL,
            instance_url TEXT NOT NULL,
            output_path TEXT NOT NULL,
            status TEXT NOT NULL,
            entry_count INTEGER NOT NULL DEFAULT 0,
            error TEXT NOT NULL DEFAULT '',
            started_at DATETIME NOT NULL,
            finished_at DATETIME
        )`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
        INSERT INTO runs (id, account, instance_url, output_path, status, entry_count, error, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID.String(),
		run.Account,
		run.InstanceURL,
		run.OutputPath,
		string(run.Status),
		run.EntryCount,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.Run) error {
	query := `
        UPDATE runs SET status = ?, entry_count = ?, error = ?, finished_at = ?
        WHERE id = ?
    `

	res, err := s.db.ExecContext(ctx, query,
		string(run.Status),
		run.EntryCount,
		run.Error,
		run.FinishedAt,
		run.ID.String(),
	)
	if err != nil {
		return err
	}

	return requireAffected(res, run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `
        SELECT id, account, instance_url, output_path, status, entry_count, error, started_at, finished_at
        FROM runs WHERE id = ?
    `

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error) {
	query := `
        SELECT id, account, instance_url, output_path, status, entry_count, error, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT ? OFFSET ?
    `

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
