package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRun("completed", 2*time.Second)
	c.RecordRun("failed", time.Second)
	c.RecordEntries("status", 3)
	c.RecordEntries("status", 2)
	c.RecordFetchError("tag")

	assert.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("completed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.runs.WithLabelValues("failed")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(c.entries.WithLabelValues("status")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.fetchErrors.WithLabelValues("tag")), 0)
	assert.Positive(t, testutil.ToFloat64(c.lastSuccess))
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordEntries("tag", 1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mastodon_sitemap_entries_total{source="tag"} 1`)
}
