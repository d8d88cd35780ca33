package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/CreditScoring/internal/api"
	"github.com/MikeSquared-Agency/CreditScoring/internal/config"
	"github.com/MikeSquared-Agency/CreditScoring/internal/hermes"
	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the scoring API and metrics servers",
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String(configFlagName))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Model is published before any listener starts.
	models := scoring.NewModelHolder()
	model, err := scoring.LoadModel(cfg.Model.Version)
	if err != nil {
		return err
	}
	if err := models.Set(model); err != nil {
		return err
	}
	logger.Info("scoring model loaded", "version", model.Version())

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	var source scoring.RandomSource
	if cfg.Scoring.Seed != 0 {
		source = scoring.NewSeededSource(cfg.Scoring.Seed)
		logger.Warn("scoring perturbation is seeded; predictions are reproducible", "seed", cfg.Scoring.Seed)
	}
	scorer := scoring.NewScorer(source, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := api.NewMetrics(registry)

	apiServer := &http.Server{
		Addr:              cfg.APIAddr(),
		Handler:           api.NewRouter(models, scorer, hermesClient, metrics, api.RouterOptions{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
		}, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           api.NewMetricsRouter(registry, models),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API server starting", "addr", apiServer.Addr)
		return listen(apiServer, "api server")
	})
	g.Go(func() error {
		logger.Info("metrics server starting", "addr", metricsServer.Addr)
		return listen(metricsServer, "metrics server")
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(
			apiServer.Shutdown(shutdownCtx),
			metricsServer.Shutdown(shutdownCtx),
		)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

func listen(srv *http.Server, name string) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
