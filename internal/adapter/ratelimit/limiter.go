// Package ratelimit throttles outbound model calls with a token bucket kept
// in Redis, so every worker process shares one budget per provider.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bucket sizes one token bucket.
type Bucket struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// PerMinute builds a bucket that admits n calls per minute with bursts of n.
// n <= 0 returns the zero bucket, which never throttles.
func PerMinute(n int) Bucket {
	if n <= 0 {
		return Bucket{}
	}
	return Bucket{Capacity: int64(n), RefillRate: float64(n) / 60}
}

// KEYS[1] bucket hash; ARGV capacity, refill rate, now (seconds), cost.
// Returns {allowed, tokens_left, retry_after_seconds}.
const tokenBucketScript = `
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now

local elapsed = math.max(0, now - ts)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local wait = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
elseif rate > 0 then
  wait = (cost - tokens) / rate
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("EXPIRE", KEYS[1], math.ceil(capacity / rate) + 60)
return { allowed, tostring(tokens), tostring(wait) }
`

// Limiter is a Redis-backed token bucket per logical key (one per provider).
// A nil Limiter, or a key without a bucket, admits everything.
type Limiter struct {
	rdb    redis.Scripter
	script *redis.Script
	prefix string
	now    func() time.Time

	mu      sync.RWMutex
	buckets map[string]Bucket
}

func New(rdb redis.Scripter, prefix string) *Limiter {
	if rdb == nil {
		return nil
	}
	return &Limiter{
		rdb:     rdb,
		script:  redis.NewScript(tokenBucketScript),
		prefix:  prefix,
		now:     time.Now,
		buckets: map[string]Bucket{},
	}
}

// SetBucket installs or replaces the bucket for key.
func (l *Limiter) SetBucket(key string, b Bucket) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[key] = b
}

// Allow takes cost tokens from key's bucket. When the bucket is short it
// reports how long until enough tokens refill. Redis failures fail open
// and are returned for logging only.
func (l *Limiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok || b.Capacity <= 0 || b.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	now := float64(l.now().UnixNano()) / 1e9
	res, err := l.script.Run(ctx, l.rdb, []string{l.prefix + key}, b.Capacity, b.RefillRate, now, cost).Slice()
	if err != nil {
		slog.Warn("rate limiter unavailable, failing open", slog.String("key", key), slog.Any("error", err))
		return true, 0, fmt.Errorf("op=ratelimit.Allow: %w", err)
	}
	if len(res) < 3 {
		return true, 0, nil
	}
	allowed, _ := res[0].(int64)
	wait := parseSeconds(res[2])
	return allowed == 1, wait, nil
}

func parseSeconds(v any) time.Duration {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil || f < 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}
