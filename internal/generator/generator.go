// Package generator builds a sitemap for one Mastodon account: it resolves
// the account, collects its public statuses and the public timeline's
// hashtags, and writes the result.
package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/romangod6/mastodon-sitemap/internal/metrics"
	"github.com/romangod6/mastodon-sitemap/internal/models"
	"github.com/romangod6/mastodon-sitemap/internal/sitemap"
	"github.com/romangod6/mastodon-sitemap/internal/storage"
)

type GeneratorConfig struct {
	InstanceURL     string
	AccountUsername string
	OutputPath      string
	TimelineLimit   int
	// StrictOutput turns a failure to create the output file into an error.
	StrictOutput bool
	// SkipMalformed drops status and tag entries with unparsable URLs
	// instead of failing the run.
	SkipMalformed   bool
	ConcurrentFetch bool
}

type Generator struct {
	api     API
	store   storage.Store
	metrics metrics.Recorder
	logger  *zap.Logger
	config  *GeneratorConfig
	now     func() time.Time
}

type Option func(*Generator)

// WithStore records every run in store.
func WithStore(store storage.Store) Option {
	return func(g *Generator) { g.store = store }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(g *Generator) { g.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator copies config, so later changes to it do not affect g.
func NewGenerator(api API, config *GeneratorConfig, opts ...Option) *Generator {
	cfg := *config
	g := &Generator{
		api:     api,
		metrics: metrics.Nop{},
		logger:  zap.NewNop(),
		config:  &cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.config.TimelineLimit <= 0 {
		g.config.TimelineLimit = 100
	}
	return g
}

// Result is the outcome of one Run.
type Result struct {
	Run     *models.Run
	Entries []models.Entry
	// Written is false when the output file could not be created and
	// StrictOutput is off.
	Written bool
}

// Run builds the entry list, writes the sitemap and records the run.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	run := models.NewRun(g.config.AccountUsername, g.config.InstanceURL, g.config.OutputPath)
	g.recordStart(ctx, run)

	result := &Result{Run: run}

	entries, err := g.Build(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		result.Entries = entries
		result.Written, err = g.write(entries)
	}

	run.Finish(len(result.Entries), err)
	g.recordFinish(ctx, run)
	g.metrics.RecordRun(string(run.Status), time.Since(start))

	if err != nil {
		g.logger.Error("Sitemap generation failed", zap.String("run_id", run.ID.String()), zap.Error(err))
		return result, err
	}

	if result.Written {
		g.logger.Info(fmt.Sprintf("%s written", g.config.OutputPath),
			zap.String("run_id", run.ID.String()),
			zap.Int("entries", len(entries)))
	}

	return result, nil
}

// Build returns the sitemap entries in output order: instance root,
// account profile, account statuses, then timeline tags.
func (g *Generator) Build(ctx context.Context) ([]models.Entry, error) {
	root, err := NewEntry(SourceInstance, g.config.InstanceURL, models.ChangeFreqHourly, 1.0, g.now())
	if err != nil {
		return nil, err
	}

	account, err := g.FindAccount(ctx, g.config.AccountUsername)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Resolved account",
		zap.String("username", account.Username),
		zap.String("account_id", account.ID))

	profile, err := NewEntry(SourceAccount, account.URL, models.ChangeFreqDaily, 1.0, g.now())
	if err != nil {
		return nil, err
	}

	statuses, tags, err := g.fetch(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	g.metrics.RecordEntries(SourceInstance, 1)
	g.metrics.RecordEntries(SourceAccount, 1)
	g.metrics.RecordEntries(SourceStatus, len(statuses))
	g.metrics.RecordEntries(SourceTag, len(tags))

	entries := make([]models.Entry, 0, 2+len(statuses)+len(tags))
	entries = append(entries, root, profile)
	entries = append(entries, statuses...)
	entries = append(entries, tags...)

	return entries, nil
}

func (g *Generator) fetch(ctx context.Context, accountID string) ([]models.Entry, []models.Entry, error) {
	if !g.config.ConcurrentFetch {
		statuses, err := g.StatusEntries(ctx, accountID)
		if err != nil {
			return nil, nil, err
		}
		tags, err := g.TagEntries(ctx)
		if err != nil {
			return nil, nil, err
		}
		return statuses, tags, nil
	}

	var (
		wg                sync.WaitGroup
		statuses, tags    []models.Entry
		statusErr, tagErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		statuses, statusErr = g.StatusEntries(ctx, accountID)
	}()
	go func() {
		defer wg.Done()
		tags, tagErr = g.TagEntries(ctx)
	}()
	wg.Wait()

	if statusErr != nil {
		return nil, nil, statusErr
	}
	if tagErr != nil {
		return nil, nil, tagErr
	}
	return statuses, tags, nil
}

func (g *Generator) write(entries []models.Entry) (bool, error) {
	data, err := sitemap.Generate(entries)
	if err != nil {
		return false, err
	}

	w := &sitemap.Writer{Strict: g.config.StrictOutput, Logger: g.logger}
	return w.Write(g.config.OutputPath, data)
}

func (g *Generator) recordStart(ctx context.Context, run *models.Run) {
	if g.store == nil {
		return
	}
	if err := g.store.CreateRun(ctx, run); err != nil {
		g.logger.Warn("Failed to record run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func (g *Generator) recordFinish(ctx context.Context, run *models.Run) {
	if g.store == nil {
		return
	}
	if err := g.store.UpdateRun(ctx, run); err != nil {
		g.logger.Warn("Failed to update run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}
