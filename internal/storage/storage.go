package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/romangod6/mastodon-sitemap/internal/models"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

type Store interface {
	Initialize() error
	Close() error

	// Run operations
	CreateRun(ctx context.Context, run *models.Run) error
	UpdateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error)
}

// NewStore opens PostgreSQL for postgres:// URLs and treats anything else
// as a SQLite database path.
func NewStore(databaseURL string) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStore(databaseURL)
	}
	return NewSQLiteStore(strings.TrimPrefix(databaseURL, "sqlite://"))
}
