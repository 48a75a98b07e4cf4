package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryConfig defines retry behavior for model calls.
type RetryConfig struct {
	// MaxAttempts counts the first call; 3 means one call plus two retries.
	MaxAttempts int
	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration
	// MaxDelay caps any single delay
	MaxDelay time.Duration
	// Multiplier is the exponential backoff multiplier
	Multiplier float64
	// Jitter randomizes delays to spread out concurrent retries
	Jitter bool
	// RetryableErrors are message fragments that mark an error transient
	RetryableErrors []string
	// NonRetryableErrors are message fragments that mark an error permanent
	NonRetryableErrors []string
}

// DefaultRetryConfig returns three attempts with exponential delays from 4s capped at 10s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 4 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       false,
		RetryableErrors: []string{
			"context deadline exceeded",
			"connection refused",
			"connection reset",
			"timeout",
			"temporary failure",
			"rate limit",
			"status 5",
			"eof",
		},
		NonRetryableErrors: []string{
			"invalid argument",
			"not found",
			"schema invalid",
			"malformed response",
			"model refusal",
			"circuit open",
			"authentication failed",
			"authorization failed",
		},
	}
}

// IsRetryable classifies err as transient (true) or permanent (false).
// Sentinels win over message matching; unknown errors are treated as transient.
func (c RetryConfig) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, ErrUpstreamRateLimit), errors.Is(err, ErrUpstreamUnavailable):
		return true
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrSchemaInvalid),
		errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrRefusal),
		errors.Is(err, ErrCircuitOpen), errors.Is(err, ErrNotFound):
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range c.NonRetryableErrors {
		if strings.Contains(msg, s) {
			return false
		}
	}
	for _, s := range c.RetryableErrors {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return true
}

// DelayFor returns the delay before retry number attempt (0-based), without jitter.
func (c RetryConfig) DelayFor(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 0; i < attempt; i++ {
		d *= c.Multiplier
	}
	if c.MaxDelay > 0 && time.Duration(d) > c.MaxDelay {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// WorstCaseDuration bounds the total time spent sleeping between attempts.
func (c RetryConfig) WorstCaseDuration() time.Duration {
	var total time.Duration
	for i := 0; i < c.MaxAttempts-1; i++ {
		total += c.DelayFor(i)
	}
	return total
}
