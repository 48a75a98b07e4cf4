package config

import (
	"time"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// GetAIRetryConfig returns the retry policy for model calls.
// In test environments, uses much shorter delays for faster test execution.
func (c Config) GetAIRetryConfig() domain.RetryConfig {
	base := domain.DefaultRetryConfig()
	if c.IsTest() {
		base.InitialDelay = 10 * time.Millisecond
		base.MaxDelay = 50 * time.Millisecond
		if c.RetryMaxAttempts > 0 {
			base.MaxAttempts = c.RetryMaxAttempts
		}
		return base
	}
	if c.RetryMaxAttempts > 0 {
		base.MaxAttempts = c.RetryMaxAttempts
	}
	if c.RetryInitialDelay > 0 {
		base.InitialDelay = c.RetryInitialDelay
	}
	if c.RetryMaxDelay > 0 {
		base.MaxDelay = c.RetryMaxDelay
	}
	if c.RetryMultiplier > 0 {
		base.Multiplier = c.RetryMultiplier
	}
	base.Jitter = c.RetryJitter
	return base
}
