package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/fairyhunter13/interview-engine/internal/config"
)

// SetupLogger configures a JSON slog logger tagged with service and env.
func SetupLogger(cfg config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch {
	case cfg.IsDev():
		opts.Level = slog.LevelDebug
	case cfg.IsTest():
		opts.Level = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
