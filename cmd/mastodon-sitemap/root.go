package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/romangod6/mastodon-sitemap/config"
	"github.com/romangod6/mastodon-sitemap/internal/generator"
	"github.com/romangod6/mastodon-sitemap/internal/mastodon"
	"github.com/romangod6/mastodon-sitemap/internal/metrics"
	"github.com/romangod6/mastodon-sitemap/internal/storage"
	"github.com/romangod6/mastodon-sitemap/internal/utils"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mastodon-sitemap",
		Short:         "Generate a sitemap for a Mastodon account",
		Long:          `Builds sitemap.xml from an account's public statuses and the instance's public hashtags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	root.AddCommand(newGenerateCommand())
	root.AddCommand(newServeCommand())
	root.AddCommand(newInspectCommand())

	return root
}

// app holds everything built from the configuration.
type app struct {
	cfg       *config.Config
	logger    *utils.RunLogger
	store     storage.Store
	registry  *prometheus.Registry
	generator *generator.Generator
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		// No logger yet; the message goes to stderr.
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
		Name:  cfg.Sitemap.AccountUsername,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	if cfg.Database.URL != "" {
		store, err := storage.NewStore(cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		if err := store.Initialize(); err != nil {
			_ = store.Close()
			a.Close()
			return nil, fmt.Errorf("failed to initialize database tables: %w", err)
		}
		a.store = store
	}

	client := mastodon.NewClient(cfg.Instance.URL, cfg.Instance.AccessToken,
		mastodon.WithUserAgent(cfg.Instance.UserAgent),
		mastodon.WithTimeout(cfg.Instance.Timeout),
	)

	opts := []generator.Option{
		generator.WithLogger(logger.Logger),
		generator.WithMetrics(metrics.NewCollector(a.registry)),
	}
	if a.store != nil {
		opts = append(opts, generator.WithStore(a.store))
	}

	a.generator = generator.NewGenerator(client, &generator.GeneratorConfig{
		InstanceURL:     cfg.Instance.URL,
		AccountUsername: cfg.Sitemap.AccountUsername,
		OutputPath:      cfg.OutputPath(),
		TimelineLimit:   cfg.Sitemap.TimelineLimit,
		StrictOutput:    cfg.Sitemap.StrictOutput,
		SkipMalformed:   cfg.Sitemap.MalformedURLPolicy == config.PolicySkip,
		ConcurrentFetch: cfg.Sitemap.ConcurrentFetch,
	}, opts...)

	logger.Debug("Configuration loaded",
		zap.String("instance", cfg.Instance.URL),
		zap.String("output", cfg.OutputPath()),
		zap.Bool("history", a.store != nil))

	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Error closing storage", zap.Error(err))
		}
	}
	_ = a.logger.Close()
}
