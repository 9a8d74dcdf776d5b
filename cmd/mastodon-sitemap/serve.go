package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/romangod6/mastodon-sitemap/internal/api"
)

func newServeCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sitemap over HTTP and regenerate it periodically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "regeneration interval, 0 disables the schedule")

	return cmd
}

func runServe(parent context.Context, interval time.Duration) error {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer a.Close()

	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(a.generator, a.store, a.cfg.OutputPath(), a.logger.Logger)
	server := api.NewServer(a.cfg.Server.Port, handler, a.registry)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := handler.RunOnce(ctx); err != nil {
		a.logger.Warn("Initial sitemap generation failed", zap.Error(err))
	}

	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					a.logger.Info("Starting scheduled generation")
					if _, err := handler.RunOnce(ctx); err != nil {
						a.logger.Warn("Scheduled sitemap generation failed", zap.Error(err))
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting API server", zap.Int("port", a.cfg.Server.Port))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("Failed to start API server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error shutting down server", zap.Error(err))
		return err
	}
	a.logger.Info("Server shut down gracefully")
	return nil
}
