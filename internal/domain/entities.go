// Package domain holds the core types and ports of the evaluation engine.
package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamRateLimit   = errors.New("upstream rate limit")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrSchemaInvalid       = errors.New("schema invalid")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrRefusal             = errors.New("model refusal")
	ErrCircuitOpen         = errors.New("circuit open")
	ErrInternal            = errors.New("internal error")
)

// Context is an alias to std context so ports read uniformly.
type Context = context.Context

// AIClient (port)

type AIClient interface {
	// ChatJSON sends one system+user exchange and returns the raw model text.
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// ProviderNamer is implemented by AI clients that report a provider label for metrics.
type ProviderNamer interface {
	Provider() string
}

// Cache (port)
// Get reports ok=false on a miss; err is reserved for backend failures.
type Cache interface {
	Get(ctx Context, key string) (value string, ok bool, err error)
	Set(ctx Context, key, value string, ttl time.Duration) error
}

// Repositories (ports)

// HistoryRepository exposes the read-only aggregate queries the readiness
// aggregator runs over a user's practice history.
type HistoryRepository interface {
	// PracticeDays returns the distinct days (UTC midnight) with at least one
	// practice session on or after since, newest first.
	PracticeDays(ctx Context, userID string, since time.Time) ([]time.Time, error)
	// AverageInterviewScore returns the mean overall score and the number of
	// evaluated sessions. Zero sessions yields (0, 0, nil).
	AverageInterviewScore(ctx Context, userID string) (avg float64, n int, err error)
	DistinctSolvedProblems(ctx Context, userID string) (int, error)
	// LatestATSScore returns ErrNotFound when the user never scanned a resume.
	LatestATSScore(ctx Context, userID string) (float64, error)
	CompletedMockSessions(ctx Context, userID string) (int, error)
	// ActiveUsers lists users with any recorded activity on or after since.
	ActiveUsers(ctx Context, since time.Time) ([]string, error)
}

type ReadinessRepository interface {
	Upsert(ctx Context, r ReadinessScore) error
	Get(ctx Context, userID string) (ReadinessScore, error)
}

// PracticeRepository appends practice records that feed the history queries.
type PracticeRepository interface {
	RecordSession(ctx Context, s InterviewSession) (string, error)
	RecordResumeScan(ctx Context, s ResumeScan) (string, error)
	RecordDSASubmission(ctx Context, s DSASubmission) (string, error)
}
