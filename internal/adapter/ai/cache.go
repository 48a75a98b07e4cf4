// Package ai holds the model-facing half of the evaluation pipeline: JSON
// extraction, schema validation, response caching, retry and circuit
// breaking, plus the provider clients in subpackages.
package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// ResponseCache is a content-addressed cache of raw model replies. Backend
// failures degrade to misses and skipped writes; they never fail a call.
type ResponseCache struct {
	backend domain.Cache
	prefix  string
	ttl     time.Duration
}

// NewResponseCache wraps backend. A nil backend disables caching.
func NewResponseCache(backend domain.Cache, prefix string, ttl time.Duration) *ResponseCache {
	return &ResponseCache{backend: backend, prefix: prefix, ttl: ttl}
}

// Key derives the cache key of a (system, user) prompt pair.
func (c *ResponseCache) Key(systemPrompt, userPrompt string) string {
	if c == nil {
		return keyFor(strings.TrimSpace(systemPrompt) + ":" + strings.TrimSpace(userPrompt))
	}
	return c.prefix + keyFor(strings.TrimSpace(systemPrompt)+":"+strings.TrimSpace(userPrompt))
}

// Get returns the cached reply for key, if any.
func (c *ResponseCache) Get(ctx domain.Context, key string) (string, bool) {
	if c == nil || c.backend == nil {
		return "", false
	}
	v, ok, err := c.backend.Get(ctx, key)
	switch {
	case err != nil:
		observability.RecordCacheEvent("error")
		slog.Warn("ai cache read failed", slog.String("key", key), slog.Any("error", err))
		return "", false
	case !ok:
		observability.RecordCacheEvent("miss")
		return "", false
	}
	observability.RecordCacheEvent("hit")
	return v, true
}

// Set stores a validated reply under key with the configured TTL.
func (c *ResponseCache) Set(ctx domain.Context, key, value string) {
	if c == nil || c.backend == nil {
		return
	}
	if err := c.backend.Set(ctx, key, value, c.ttl); err != nil {
		observability.RecordCacheEvent("error")
		slog.Warn("ai cache write failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	observability.RecordCacheEvent("write")
}

func keyFor(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
