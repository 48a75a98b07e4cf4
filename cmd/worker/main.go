// Package main runs the readiness worker: it recomputes readiness scores for
// recently active users on a fixed interval and serves metrics and health.
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

	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-engine/internal/app"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(observability.SetupLogger(cfg))

	if err := run(cfg); err != nil {
		slog.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("worker stopped")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.InitMetrics()
	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	scorer, err := app.LoadScorer(cfg)
	if err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	readiness := usecase.NewReadinessService(
		postgres.NewHistoryRepo(pool),
		postgres.NewReadinessRepo(pool),
		scorer.Config().Readiness,
		cfg.ReadinessConcurrency,
	)
	scheduler := app.NewReadinessScheduler(readiness, cfg.ReadinessInterval, cfg.ReadinessActiveSince)

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.Handle("/healthz", app.HealthHandler(app.BuildHealthChecks(pool, nil)))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	slog.Info("starting worker",
		slog.String("env", cfg.AppEnv),
		slog.Duration("interval", cfg.ReadinessInterval),
		slog.Int("metrics_port", cfg.MetricsPort))
	scheduler.Run(ctx)

	slog.Info("signal received, shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
