package mastodon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/romangod6/mastodon-sitemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SearchAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/search", r.URL.Path)
		assert.Equal(t, "bob", r.URL.Query().Get("q"))
		assert.Equal(t, "40", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "mastodon-sitemap/test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"1","username":"alice","acct":"alice","url":"https://example.social/@alice"},
			{"id":"2","username":"bob","acct":"bob","url":"https://example.social/@bob"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret", WithUserAgent("mastodon-sitemap/test"))
	accounts, err := client.SearchAccounts(context.Background(), "bob")

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "2", accounts[1].ID)
	assert.Equal(t, "https://example.social/@bob", accounts[1].URL)
}

func TestClient_GetAccountStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/42/statuses", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"1","visibility":"public","url":"https://example.social/@tester/1",
			 "created_at":"2024-01-02T03:04:05.000Z","edited_at":"2024-02-01T00:00:00.000Z","tags":[]},
			{"id":"2","visibility":"direct","url":null,"created_at":"2024-01-03T00:00:00.000Z","edited_at":null,
			 "tags":[{"name":"go","url":"https://example.social/tags/go"}]}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	statuses, err := client.GetAccountStatuses(context.Background(), "42")

	require.NoError(t, err)
	require.Len(t, statuses, 2)

	first := statuses[0]
	assert.Equal(t, models.VisibilityPublic, first.Visibility)
	require.NotNil(t, first.URL)
	assert.Equal(t, "https://example.social/@tester/1", *first.URL)
	require.NotNil(t, first.EditedAt)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), first.EditedAt.UTC())

	second := statuses[1]
	assert.Equal(t, models.VisibilityDirect, second.Visibility)
	assert.Nil(t, second.URL)
	assert.Nil(t, second.EditedAt)
	assert.Equal(t, []models.Tag{{Name: "go", URL: "https://example.social/tags/go"}}, second.Tags)
}

func TestClient_GetPublicTimeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/timelines/public", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("only_media"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	statuses, err := client.GetPublicTimeline(context.Background(), TimelineOptions{Limit: 100})

	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"The access token is invalid"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad")
	_, err := client.SearchAccounts(context.Background(), "bob")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search accounts")
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "The access token is invalid")
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	_, err := client.GetPublicTimeline(context.Background(), TimelineOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get public timeline")
}

func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "secret")
	_, err := client.GetAccountStatuses(ctx, "42")

	assert.ErrorIs(t, err, context.Canceled)
}
