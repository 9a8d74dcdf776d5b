package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/romangod6/mastodon-sitemap/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var idStr, status string
	var finishedAt sql.NullTime

	err := row.Scan(
		&idStr,
		&run.Account,
		&run.InstanceURL,
		&run.OutputPath,
		&status,
		&run.EntryCount,
		&run.Error,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", idStr, err)
	}
	run.Status = models.RunStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time.UTC()
		run.FinishedAt = &t
	}
	run.StartedAt = run.StartedAt.UTC()

	return &run, nil
}

func requireAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
