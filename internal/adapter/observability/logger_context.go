package observability

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger stores lg in ctx. A nil logger leaves ctx unchanged.
func ContextWithLogger(ctx context.Context, lg *slog.Logger) context.Context {
	if lg == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, lg)
}

// LoggerFromContext returns the logger stored in ctx, or slog.Default().
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if lg, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && lg != nil {
			return lg
		}
	}
	return slog.Default()
}

// WithLogAttrs returns a context whose logger carries attrs in addition to
// whatever the parent logger already had.
func WithLogAttrs(ctx context.Context, attrs ...any) context.Context {
	return ContextWithLogger(ctx, LoggerFromContext(ctx).With(attrs...))
}
