package ai

import (
	"context"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// RetryPolicy runs an operation with bounded exponential backoff. Errors
// the config classifies as permanent stop the loop at once.
type RetryPolicy struct {
	cfg domain.RetryConfig
}

func NewRetryPolicy(cfg domain.RetryConfig) *RetryPolicy {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryPolicy{cfg: cfg}
}

// Config returns the policy's configuration.
func (p *RetryPolicy) Config() domain.RetryConfig { return p.cfg }

func (p *RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.cfg.InitialDelay
	expo.MaxInterval = p.cfg.MaxDelay
	expo.Multiplier = p.cfg.Multiplier
	expo.MaxElapsedTime = 0
	expo.RandomizationFactor = 0
	if p.cfg.Jitter {
		expo.RandomizationFactor = backoff.DefaultRandomizationFactor
	}
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(p.cfg.MaxAttempts-1)), ctx)
}

// Do calls op until it succeeds, returns a permanent error, the attempt
// budget is spent, or ctx ends. The last error is returned unwrapped.
func (p *RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !p.cfg.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("model call failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.cfg.MaxAttempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))
	}
	return backoff.RetryNotify(wrapped, p.backOff(ctx), notify)
}
