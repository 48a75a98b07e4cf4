package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Recomputer refreshes the readiness of recently active users.
type Recomputer interface {
	RecomputeActive(ctx context.Context, window time.Duration) (int, error)
}

// ReadinessScheduler periodically recomputes readiness for active users.
type ReadinessScheduler struct {
	svc      Recomputer
	interval time.Duration
	window   time.Duration
}

func NewReadinessScheduler(svc Recomputer, interval, window time.Duration) *ReadinessScheduler {
	if svc == nil {
		return nil
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &ReadinessScheduler{svc: svc, interval: interval, window: window}
}

// Run recomputes once immediately and then on every tick until ctx ends.
func (s *ReadinessScheduler) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("readiness scheduler stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *ReadinessScheduler) runOnce(ctx context.Context) {
	ctx, span := otel.Tracer("app.scheduler").Start(ctx, "ReadinessScheduler.runOnce")
	defer span.End()

	start := time.Now()
	n, err := s.svc.RecomputeActive(ctx, s.window)
	span.SetAttributes(
		attribute.Int("readiness.users_recomputed", n),
		attribute.Float64("readiness.window_hours", s.window.Hours()),
	)
	if err != nil {
		span.RecordError(err)
		slog.Error("readiness recompute pass had failures", slog.Int("ok", n), slog.Any("error", err))
		return
	}
	slog.Info("readiness recompute pass done", slog.Int("users", n), slog.Duration("took", time.Since(start)))
}
