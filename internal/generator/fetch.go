package generator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/romangod6/mastodon-sitemap/internal/mastodon"
	"github.com/romangod6/mastodon-sitemap/internal/models"
)

// ErrAccountNotFound means no search result matched the username exactly.
var ErrAccountNotFound = errors.New("account not found")

// API is the subset of the Mastodon API the generator consumes.
type API interface {
	SearchAccounts(ctx context.Context, query string) ([]models.Account, error)
	GetAccountStatuses(ctx context.Context, accountID string) ([]models.Status, error)
	GetPublicTimeline(ctx context.Context, opts mastodon.TimelineOptions) ([]models.Status, error)
}

// FindAccount returns the first search result whose username equals
// username exactly. A failed search counts as no results unless ctx is
// done.
func (g *Generator) FindAccount(ctx context.Context, username string) (*models.Account, error) {
	accounts, err := g.api.SearchAccounts(ctx, username)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("search accounts: %w", ctxErr)
	}
	if err != nil {
		g.logger.Error("Account search failed", zap.String("username", username), zap.Error(err))
		g.metrics.RecordFetchError(SourceAccount)
		accounts = nil
	}

	for i := range accounts {
		if accounts[i].Username == username {
			account := accounts[i]
			return &account, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, username)
}

// StatusEntries builds entries for the account's public statuses that
// have a canonical URL. A failed fetch yields no entries, but a done ctx
// is returned as an error.
func (g *Generator) StatusEntries(ctx context.Context, accountID string) ([]models.Entry, error) {
	statuses, err := g.api.GetAccountStatuses(ctx, accountID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch account statuses: %w", ctxErr)
	}
	if err != nil {
		g.logger.Error("Fetching account statuses failed", zap.String("account_id", accountID), zap.Error(err))
		g.metrics.RecordFetchError(SourceStatus)
		return nil, nil
	}

	var entries []models.Entry
	for i := range statuses {
		status := &statuses[i]
		if !status.Listable() {
			continue
		}

		entry, err := NewEntry(SourceStatus, *status.URL, models.ChangeFreqYearly, 1.0, status.LastModified())
		if err != nil {
			if g.skip(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}

	g.logger.Debug("Collected status entries",
		zap.Int("statuses", len(statuses)),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// TagEntries builds entries for the hashtags on one page of the public
// timeline. A failed fetch yields no entries, but a done ctx is returned
// as an error.
func (g *Generator) TagEntries(ctx context.Context) ([]models.Entry, error) {
	statuses, err := g.api.GetPublicTimeline(ctx, mastodon.TimelineOptions{
		OnlyMedia: false,
		Limit:     g.config.TimelineLimit,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch public timeline: %w", ctxErr)
	}
	if err != nil {
		g.logger.Error("Fetching public timeline failed", zap.Error(err))
		g.metrics.RecordFetchError(SourceTag)
		return nil, nil
	}

	now := g.now()
	urls := UniqueTagURLs(statuses)

	entries := make([]models.Entry, 0, len(urls))
	for _, loc := range urls {
		entry, err := NewEntry(SourceTag, loc, models.ChangeFreqDaily, 0.3, now)
		if err != nil {
			if g.skip(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, entry)
	}

	g.logger.Debug("Collected tag entries",
		zap.Int("statuses", len(statuses)),
		zap.Int("tags", len(entries)))

	return entries, nil
}

// skip logs err and reports whether the entry should be dropped instead
// of failing the run.
func (g *Generator) skip(err error) bool {
	if !g.config.SkipMalformed {
		return false
	}
	g.logger.Warn("Skipping malformed URL", zap.Error(err))
	return true
}
