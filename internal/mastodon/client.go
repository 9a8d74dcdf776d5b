// Package mastodon adapts github.com/mattn/go-mastodon to the account,
// status and tag models the sitemap generator works with.
package mastodon

import (
	"context"
	"fmt"
	"time"

	gomastodon "github.com/mattn/go-mastodon"

	"github.com/romangod6/mastodon-sitemap/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	// searchLimit is the largest page the accounts search endpoint serves.
	searchLimit = 40
)

// TimelineOptions narrows a public timeline request.
type TimelineOptions struct {
	OnlyMedia bool
	Limit     int
}

type Client struct {
	api *gomastodon.Client
}

type Option func(*Client)

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.api.UserAgent = ua }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.api.Timeout = d }
}

func NewClient(baseURL, accessToken string, opts ...Option) *Client {
	api := gomastodon.NewClient(&gomastodon.Config{
		Server:      baseURL,
		AccessToken: accessToken,
	})
	api.Timeout = defaultTimeout

	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchAccounts queries the instance's account directory.
func (c *Client) SearchAccounts(ctx context.Context, query string) ([]models.Account, error) {
	found, err := c.api.AccountsSearch(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}

	accounts := make([]models.Account, 0, len(found))
	for _, a := range found {
		if a == nil {
			continue
		}
		accounts = append(accounts, toAccount(a))
	}
	return accounts, nil
}

// GetAccountStatuses returns the first page of an account's statuses.
func (c *Client) GetAccountStatuses(ctx context.Context, accountID string) ([]models.Status, error) {
	statuses, err := c.api.GetAccountStatuses(ctx, gomastodon.ID(accountID), nil)
	if err != nil {
		return nil, fmt.Errorf("get account statuses: %w", err)
	}
	return toStatuses(statuses), nil
}

// GetPublicTimeline returns one page of the instance's federated public
// timeline.
func (c *Client) GetPublicTimeline(ctx context.Context, opts TimelineOptions) ([]models.Status, error) {
	var pg *gomastodon.Pagination
	if opts.Limit > 0 {
		pg = &gomastodon.Pagination{Limit: int64(opts.Limit)}
	}

	var (
		statuses []*gomastodon.Status
		err      error
	)
	if opts.OnlyMedia {
		statuses, err = c.api.GetTimelineMedia(ctx, false, pg)
	} else {
		statuses, err = c.api.GetTimelinePublic(ctx, false, pg)
	}
	if err != nil {
		return nil, fmt.Errorf("get public timeline: %w", err)
	}
	return toStatuses(statuses), nil
}

func toAccount(a *gomastodon.Account) models.Account {
	return models.Account{
		ID:       string(a.ID),
		Username: a.Username,
		Acct:     a.Acct,
		URL:      a.URL,
	}
}

func toStatuses(in []*gomastodon.Status) []models.Status {
	out := make([]models.Status, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		out = append(out, toStatus(s))
	}
	return out
}

// toStatus maps the library's zero values for url and edited_at back to
// absent fields.
func toStatus(s *gomastodon.Status) models.Status {
	status := models.Status{
		ID:         string(s.ID),
		Visibility: models.Visibility(s.Visibility),
		CreatedAt:  s.CreatedAt,
	}
	if s.URL != "" {
		u := s.URL
		status.URL = &u
	}
	if !s.EditedAt.IsZero() {
		edited := s.EditedAt
		status.EditedAt = &edited
	}
	if len(s.Tags) > 0 {
		status.Tags = make([]models.Tag, 0, len(s.Tags))
		for _, t := range s.Tags {
			status.Tags = append(status.Tags, models.Tag{Name: t.Name, URL: t.URL})
		}
	}
	return status
}
