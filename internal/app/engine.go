// Package app assembles the engine's components from configuration and
// runs its background loops.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai"
	"github.com/fairyhunter13/interview-engine/internal/adapter/ai/gemini"
	"github.com/fairyhunter13/interview-engine/internal/adapter/ai/real"
	"github.com/fairyhunter13/interview-engine/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/interview-engine/internal/adapter/cache"
	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/adapter/ratelimit"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/scoring"
	"github.com/fairyhunter13/interview-engine/internal/usecase"
)

const rateLimitPrefix = "ai_ratelimit:"

// NewAIClient returns the client of the configured provider. It returns a nil
// client when no provider has credentials; callers then score locally.
func NewAIClient(ctx context.Context, cfg config.Config) (domain.AIClient, error) {
	if !cfg.AIEnabled() {
		slog.Info("no model provider configured, scoring locally", slog.String("provider", cfg.AIProvider))
		return nil, nil
	}
	switch strings.ToLower(cfg.AIProvider) {
	case config.ProviderGemini:
		c, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("op=app.NewAIClient: %w", err)
		}
		return c, nil
	case config.ProviderOpenAI:
		return real.New(cfg), nil
	}
	return nil, fmt.Errorf("op=app.NewAIClient: %w: unknown provider %q", domain.ErrInvalidArgument, cfg.AIProvider)
}

// LoadScorer builds the local scorer from the calibration file, if any.
func LoadScorer(cfg config.Config) (*scoring.Scorer, error) {
	sc, err := config.LoadScoring(cfg.ScoringConfigPath)
	if err != nil {
		return nil, fmt.Errorf("op=app.LoadScorer: %w", err)
	}
	return scoring.NewScorer(sc), nil
}

// NewEvaluator wires the orchestrator. A nil rdb disables response caching
// and shared rate limiting.
func NewEvaluator(ctx context.Context, cfg config.Config, scorer *scoring.Scorer, rdb *redis.Client) (*usecase.Evaluator, error) {
	client, err := NewAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	validator, err := ai.NewResponseValidator()
	if err != nil {
		return nil, fmt.Errorf("op=app.NewEvaluator: %w", err)
	}
	provider := strings.ToLower(cfg.AIProvider)

	deps := usecase.EvaluatorDeps{
		AI:        client,
		Scorer:    scorer,
		Validator: validator,
		Cache:     ai.NewResponseCache(cache.NoopCache{}, cfg.AICachePrefix, cfg.AICacheTTL),
		Retry:     ai.NewRetryPolicy(cfg.GetAIRetryConfig()),
		Breaker:   ai.NewBreaker(provider, cfg.BreakerFailureThreshold, cfg.BreakerRecoveryTimeout),
		Drift:     observability.NewScoreDriftMonitor(cfg.AIModel(), cfg.DriftWindow, cfg.DriftThreshold),
		Tokens:    tokencount.DefaultCounter,
	}
	if rdb != nil {
		deps.Cache = ai.NewResponseCache(cache.NewRedisCache(rdb), cfg.AICachePrefix, cfg.AICacheTTL)
		limiter := ratelimit.New(rdb, rateLimitPrefix)
		if cfg.AIRequestsPerMinute > 0 {
			limiter.SetBucket(provider, ratelimit.PerMinute(cfg.AIRequestsPerMinute))
		}
		deps.Limiter = limiter
	}

	return usecase.NewEvaluator(deps, usecase.EvaluatorOptions{
		Model:             cfg.AIModel(),
		Timeout:           cfg.EvaluationTimeout,
		MaxTokens:         cfg.AIMaxTokens,
		PromptTokenBudget: cfg.AIPromptTokenBudget,
		Workers:           cfg.EvaluationWorkers,
	}), nil
}
