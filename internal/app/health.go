package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisPinger is the slice of a Redis client needed for health checks.
type RedisPinger interface{ Ping(ctx context.Context) error }

// Check is a named dependency probe.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// BuildHealthChecks returns probes for the database and, when configured,
// Redis. A nil pool still yields a failing db probe.
func BuildHealthChecks(pool Pinger, rdb RedisPinger) []Check {
	checks := []Check{{
		Name: "db",
		Probe: func(ctx context.Context) error {
			if pool == nil {
				return errors.New("db not configured")
			}
			return pool.Ping(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, Check{Name: "redis", Probe: rdb.Ping})
	}
	return checks
}

// HealthHandler answers 200 when every probe passes within two seconds and
// 503 otherwise, naming the first failing dependency.
func HealthHandler(checks []Check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				http.Error(w, c.Name+": "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// RedisPing adapts a go-redis style Ping to RedisPinger.
type RedisPing func(ctx context.Context) error

func (f RedisPing) Ping(ctx context.Context) error { return f(ctx) }
