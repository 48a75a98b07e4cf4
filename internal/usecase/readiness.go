package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/scoring"
)

// streakLookback bounds how far back practice days are read.
const streakLookback = 366 * 24 * time.Hour

// ReadinessService computes and stores the per-user readiness index.
type ReadinessService struct {
	history     domain.HistoryRepository
	scores      domain.ReadinessRepository
	params      config.ReadinessParams
	concurrency int
	now         func() time.Time
}

func NewReadinessService(history domain.HistoryRepository, scores domain.ReadinessRepository, params config.ReadinessParams, concurrency int) *ReadinessService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReadinessService{history: history, scores: scores, params: params, concurrency: concurrency, now: time.Now}
}

// Compute reads the user's history, aggregates it, and overwrites the
// stored score. A user with no history gets an all-zero score.
func (s *ReadinessService) Compute(ctx context.Context, userID string) (domain.ReadinessScore, error) {
	if userID == "" {
		return domain.ReadinessScore{}, fmt.Errorf("op=usecase.Readiness.Compute: %w: user id required", domain.ErrInvalidArgument)
	}
	ctx, span := otel.Tracer("usecase.readiness").Start(ctx, "Readiness.Compute")
	defer span.End()

	now := s.now().UTC()
	var b domain.ReadinessBreakdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		days, err := s.history.PracticeDays(gctx, userID, now.Add(-streakLookback))
		if err != nil {
			return err
		}
		b.StreakDays = scoring.StreakDays(days, now)
		return nil
	})
	g.Go(func() error {
		avg, _, err := s.history.AverageInterviewScore(gctx, userID)
		b.AvgInterviewScore = avg
		return err
	})
	g.Go(func() error {
		n, err := s.history.DistinctSolvedProblems(gctx, userID)
		b.DSASolved = n
		return err
	})
	g.Go(func() error {
		ats, err := s.history.LatestATSScore(gctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		b.LatestATS = ats
		return err
	})
	g.Go(func() error {
		n, err := s.history.CompletedMockSessions(gctx, userID)
		b.MocksCompleted = n
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ReadinessScore{}, fmt.Errorf("op=usecase.Readiness.Compute: %w", err)
	}

	score := scoring.AggregateReadiness(s.params, userID, b, now)
	if err := s.scores.Upsert(ctx, score); err != nil {
		return domain.ReadinessScore{}, fmt.Errorf("op=usecase.Readiness.Compute: %w", err)
	}
	span.SetAttributes(attribute.Float64("readiness.total", score.TotalScore))
	observability.ObserveReadiness(score.TotalScore)
	return score, nil
}

// Get returns the stored score, computing it on first access.
func (s *ReadinessService) Get(ctx context.Context, userID string) (domain.ReadinessScore, error) {
	score, err := s.scores.Get(ctx, userID)
	if err == nil {
		return score, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.ReadinessScore{}, fmt.Errorf("op=usecase.Readiness.Get: %w", err)
	}
	return s.Compute(ctx, userID)
}

// RecomputeActive recomputes every user active within window. A failing user
// does not stop the others; their errors are joined into the result.
func (s *ReadinessService) RecomputeActive(ctx context.Context, window time.Duration) (int, error) {
	users, err := s.history.ActiveUsers(ctx, s.now().UTC().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("op=usecase.Readiness.RecomputeActive: %w", err)
	}

	results := make([]error, len(users))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, u := range users {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = ctx.Err()
				return nil
			}
			uctx := observability.WithLogAttrs(ctx, slog.String("user_id", u))
			if _, err := s.Compute(uctx, u); err != nil {
				observability.RecordReadinessFailure()
				observability.LoggerFromContext(uctx).Error("readiness recompute failed", slog.Any("error", err))
				results[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	done := 0
	for _, e := range results {
		if e == nil {
			done++
		}
	}
	observability.LoggerFromContext(ctx).Info("readiness recomputed", slog.Int("users", len(users)), slog.Int("ok", done))
	if err := errors.Join(results...); err != nil {
		return done, fmt.Errorf("op=usecase.Readiness.RecomputeActive: %w", err)
	}
	return done, nil
}
