package generator

import (
	"fmt"
	"net/url"
	"time"

	"github.com/romangod6/mastodon-sitemap/internal/models"
)

// MalformedURLError reports a location that is not an absolute URL.
type MalformedURLError struct {
	Source string
	URL    string
	Err    error
}

func (e *MalformedURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s url %q: %v", e.Source, e.URL, e.Err)
	}
	return fmt.Sprintf("malformed %s url %q: not absolute", e.Source, e.URL)
}

func (e *MalformedURLError) Unwrap() error {
	return e.Err
}

// Sources of sitemap entries, also used as metric labels.
const (
	SourceInstance = "instance"
	SourceAccount  = "account"
	SourceStatus   = "status"
	SourceTag      = "tag"
)

// NewEntry parses loc and builds a sitemap entry from it. A URL with an
// empty path gets the root path, so https://example.social becomes
// https://example.social/.
func NewEntry(source, loc string, freq models.ChangeFreq, priority float64, lastMod time.Time) (models.Entry, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return models.Entry{}, &MalformedURLError{Source: source, URL: loc, Err: err}
	}
	if !u.IsAbs() || u.Host == "" {
		return models.Entry{}, &MalformedURLError{Source: source, URL: loc}
	}
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}

	return models.Entry{
		Loc:        u,
		ChangeFreq: freq,
		Priority:   priority,
		LastMod:    lastMod,
	}, nil
}

// UniqueTagURLs returns the URL of the first tag seen for each tag name,
// in order of first appearance.
func UniqueTagURLs(statuses []models.Status) []string {
	seen := make(map[string]struct{})
	var urls []string

	for _, status := range statuses {
		for _, tag := range status.Tags {
			if _, ok := seen[tag.Name]; ok {
				continue
			}
			seen[tag.Name] = struct{}{}
			urls = append(urls, tag.URL)
		}
	}

	return urls
}
