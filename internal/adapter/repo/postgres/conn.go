// Package postgres implements the history, practice and readiness
// repositories on PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is the subset of *pgxpool.Pool the repos use, so tests can stub it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// NewPool creates a pgx pool with query tracing.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("op=postgres.NewPool: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("op=postgres.NewPool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("op=postgres.NewPool: ping: %w", err)
	}
	return pool, nil
}

// Schema creates the tables this engine owns. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS interview_sessions (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	session_type  TEXT NOT NULL,
	question      TEXT NOT NULL DEFAULT '',
	overall_score DOUBLE PRECISION NOT NULL,
	grade         TEXT NOT NULL,
	source        TEXT NOT NULL,
	evaluation    JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS interview_sessions_user_created_idx ON interview_sessions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS practice_streaks (
	user_id  TEXT NOT NULL,
	day      DATE NOT NULL,
	sessions INT NOT NULL DEFAULT 1,
	PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS dsa_submissions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	problem_id TEXT NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS dsa_submissions_user_idx ON dsa_submissions (user_id, status);

CREATE TABLE IF NOT EXISTS resume_scans (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	ats_score  DOUBLE PRECISION NOT NULL,
	report     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS resume_scans_user_created_idx ON resume_scans (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS readiness_scores (
	user_id           TEXT PRIMARY KEY,
	total_score       DOUBLE PRECISION NOT NULL,
	streak_weight     DOUBLE PRECISION NOT NULL,
	evaluation_weight DOUBLE PRECISION NOT NULL,
	dsa_weight        DOUBLE PRECISION NOT NULL,
	ats_weight        DOUBLE PRECISION NOT NULL,
	mock_weight       DOUBLE PRECISION NOT NULL,
	breakdown         JSONB NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("op=postgres.EnsureSchema: %w", err)
	}
	return nil
}

func startSpan(ctx context.Context, tracerName, name, operation, table string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	)
	return ctx, span
}
