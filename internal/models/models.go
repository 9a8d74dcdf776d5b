package models

import (
	"time"

	"github.com/google/uuid"
)

// Visibility is the access scope of a status.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Acct     string `json:"acct"`
	URL      string `json:"url"`
}

type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Status struct {
	ID         string     `json:"id"`
	Visibility Visibility `json:"visibility"`
	URL        *string    `json:"url"`
	CreatedAt  time.Time  `json:"created_at"`
	EditedAt   *time.Time `json:"edited_at"`
	Tags       []Tag      `json:"tags"`
}

// LastModified is the edit time when the status was edited, otherwise its creation time.
func (s *Status) LastModified() time.Time {
	if s.EditedAt != nil {
		return *s.EditedAt
	}
	return s.CreatedAt
}

// Listable reports whether the status belongs in a sitemap.
func (s *Status) Listable() bool {
	return s.Visibility == VisibilityPublic && s.URL != nil && *s.URL != ""
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type Run struct {
	ID          uuid.UUID  `json:"id"`
	Account     string     `json:"account"`
	InstanceURL string     `json:"instanceUrl"`
	OutputPath  string     `json:"outputPath"`
	Status      RunStatus  `json:"status"`
	EntryCount  int        `json:"entryCount"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}
