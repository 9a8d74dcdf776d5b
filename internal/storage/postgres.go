package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/mastodon-sitemap/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id UUID PRIMARY KEY,
            account VARCHAR(255) NOT NULL,
            instance_url VARCHAR(2048) NOT NULL,
            output_path TEXT NOT NULL,
            status VARCHAR(32) NOT NULL,
            entry_count INTEGER NOT NULL DEFAULT 0,
            error TEXT NOT NULL DEFAULT '',
            started_at TIMESTAMPTZ NOT NULL,
            finished_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
        INSERT INTO runs (id, account, instance_url, output_path, status, entry_count, error, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Account,
		run.InstanceURL,
		run.OutputPath,
		string(run.Status),
		run.EntryCount,
		run.Error,
		run.StartedAt,
		pq.NullTime{Time: derefTime(run.FinishedAt), Valid: run.FinishedAt != nil},
	)

	return err
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *models.Run) error {
	query := `
        UPDATE runs SET status = $1, entry_count = $2, error = $3, finished_at = $4
        WHERE id = $5
    `

	res, err := s.db.ExecContext(ctx, query,
		string(run.Status),
		run.EntryCount,
		run.Error,
		pq.NullTime{Time: derefTime(run.FinishedAt), Valid: run.FinishedAt != nil},
		run.ID,
	)
	if err != nil {
		return err
	}

	return requireAffected(res, run.ID)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	query := `
        SELECT id, account, instance_url, output_path, status, entry_count, error, started_at, finished_at
        FROM runs WHERE id = $1
    `

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error) {
	query := `
        SELECT id, account, instance_url, output_path, status, entry_count, error, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1 OFFSET $2
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
