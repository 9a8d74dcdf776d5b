// Package sitemap encodes entries to the sitemaps.org XML format and writes
// the result to disk.
package sitemap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/romangod6/mastodon-sitemap/internal/models"
)

// Generate serializes entries in order into a sitemap document.
func Generate(entries []models.Entry) ([]byte, error) {
	doc := models.Sitemap{
		XMLNS: models.Namespace,
		URLs:  make([]models.URL, 0, len(entries)),
	}

	for i, e := range entries {
		if e.Loc == nil {
			return nil, fmt.Errorf("entry %d has no location", i)
		}
		u := models.URL{
			Loc:        e.Loc.String(),
			ChangeFreq: string(e.ChangeFreq),
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format(time.RFC3339)
		}
		doc.URLs = append(doc.URLs, u)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// Writer replaces the sitemap file at a path.
type Writer struct {
	// Strict makes a failure to create the output file an error. Otherwise
	// it is logged and no file is written.
	Strict bool
	Logger *zap.Logger
}

// Write removes any existing file at path and writes data in its place.
// It reports whether the file was written.
func (w *Writer) Write(path string, data []byte) (bool, error) {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to remove existing sitemap", zap.String("path", path), zap.Error(err))
	}

	file, err := os.Create(path)
	if err != nil {
		if w.Strict {
			return false, fmt.Errorf("create sitemap file: %w", err)
		}
		logger.Warn("Could not create sitemap file, nothing written", zap.String("path", path), zap.Error(err))
		return false, nil
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return false, fmt.Errorf("write sitemap file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return false, fmt.Errorf("sync sitemap file: %w", err)
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("close sitemap file: %w", err)
	}

	return true, nil
}

// Parse reads a sitemap document.
func Parse(r io.Reader) (*models.Sitemap, error) {
	var doc models.Sitemap
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}
	return &doc, nil
}

// Summary describes the contents of a sitemap.
type Summary struct {
	Total        int
	ByChangeFreq map[string]int
	Newest       string
	Oldest       string
}

func Summarize(doc *models.Sitemap) Summary {
	s := Summary{
		Total:        len(doc.URLs),
		ByChangeFreq: make(map[string]int),
	}

	var lastmods []string
	for _, u := range doc.URLs {
		s.ByChangeFreq[u.ChangeFreq]++
		if u.LastMod != "" {
			lastmods = append(lastmods, u.LastMod)
		}
	}

	// RFC 3339 in UTC sorts lexically
	if len(lastmods) > 0 {
		sort.Strings(lastmods)
		s.Oldest = lastmods[0]
		s.Newest = lastmods[len(lastmods)-1]
	}

	return s
}
