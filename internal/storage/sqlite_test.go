package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romangod6/mastodon-sitemap/internal/models"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewStore_SelectsSQLite(t *testing.T) {
	store, err := NewStore("sqlite://" + filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*SQLiteStore)
	assert.True(t, ok)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := models.NewRun("tester", "https://example.social", "sitemap.xml")
	require.NoError(t, store.CreateRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
	assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Second)

	run.Finish(3, nil)
	require.NoError(t, store.UpdateRun(ctx, run))

	got, err = store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Equal(t, 3, got.EntryCount)
	require.NotNil(t, got.FinishedAt)
}

func TestSQLiteStore_FailedRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := models.NewRun("tester", "https://example.social", "sitemap.xml")
	require.NoError(t, store.CreateRun(ctx, run))

	run.Finish(0, errors.New("account not found"))
	require.NoError(t, store.UpdateRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, got.Status)
	assert.Equal(t, "account not found", got.Error)
}

func TestSQLiteStore_ListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	older := models.NewRun("tester", "https://example.social", "sitemap.xml")
	older.StartedAt = time.Now().UTC().Add(-time.Hour)
	newer := models.NewRun("tester", "https://example.social", "sitemap.xml")

	require.NoError(t, store.CreateRun(ctx, older))
	require.NoError(t, store.CreateRun(ctx, newer))

	runs, err := store.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	runs, err = store.ListRuns(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, older.ID, runs[0].ID)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)

	run := models.NewRun("tester", "https://example.social", "sitemap.xml")
	assert.ErrorIs(t, store.UpdateRun(ctx, run), ErrRunNotFound)
}
