// Package metrics exposes Prometheus counters for sitemap generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the generator reports to.
type Recorder interface {
	RecordRun(status string, duration time.Duration)
	RecordEntries(source string, count int)
	RecordFetchError(source string)
}

type Collector struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	entries     *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mastodon_sitemap_runs_total",
			Help: "Sitemap generation runs by final status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mastodon_sitemap_run_duration_seconds",
			Help:    "Duration of sitemap generation runs",
			Buckets: prometheus.DefBuckets,
		}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mastodon_sitemap_entries_total",
			Help: "Sitemap entries produced by source",
		}, []string{"source"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mastodon_sitemap_fetch_errors_total",
			Help: "Failed API calls by source",
		}, []string{"source"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mastodon_sitemap_last_success_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
	}

	reg.MustRegister(c.runs, c.runDuration, c.entries, c.fetchErrors, c.lastSuccess)

	return c
}

func (c *Collector) RecordRun(status string, duration time.Duration) {
	c.runs.WithLabelValues(status).Inc()
	c.runDuration.Observe(duration.Seconds())
	if status == "completed" {
		c.lastSuccess.SetToCurrentTime()
	}
}

func (c *Collector) RecordEntries(source string, count int) {
	c.entries.WithLabelValues(source).Add(float64(count))
}

func (c *Collector) RecordFetchError(source string) {
	c.fetchErrors.WithLabelValues(source).Inc()
}

// Handler serves the metrics registered in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(string, time.Duration) {}
func (Nop) RecordEntries(string, int)       {}
func (Nop) RecordFetchError(string)         {}
