// Package cli implements evalctl, the developer command line for the
// evaluation engine.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/interview-engine/internal/adapter/cache"
	"github.com/fairyhunter13/interview-engine/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// Version info set from main
var version = "dev"

// SetVersion records the build version shown by --version.
func SetVersion(v string) { version = v }

// NewRootCmd builds the evalctl command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "evalctl",
		Short: "Score interview answers and readiness from the command line",
		Long: `evalctl runs the interview evaluation engine locally.

Answers and resumes are read from stdin. Model-backed commands use the
provider configured through the environment (AI_PROVIDER, OPENAI_API_KEY,
GEMINI_API_KEY) and fall back to local scoring when none is set.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().StringP("output", "o", outputJSON, "output format (json, table)")

	root.AddCommand(
		newScoreCmd(),
		newSegmentCmd(),
		newEvaluateCmd(),
		newResumeCmd(),
		newQuestionsCmd(),
		newSubmitCmd(),
		newDSACmd(),
		newReadinessCmd(),
	)
	return root
}

// Execute runs evalctl with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func readInput(cmd *cobra.Command) (string, error) {
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func readFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	// #nosec G304 -- operator-supplied path
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadConfig() (config.Config, error) { return config.Load() }

// openRedis connects to Redis when configured. Failure is not fatal: the
// caller proceeds without cache and shared rate limiting.
func openRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, running without cache", slog.Any("error", err))
		return nil
	}
	return rdb
}

func openPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func parseQuestionType(s string) (domain.QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "behavioral":
		return domain.QuestionBehavioral, nil
	case "hr":
		return domain.QuestionHR, nil
	case "technical":
		return domain.QuestionTechnical, nil
	case "system-design", "system design", "systemdesign":
		return domain.QuestionSystemDesign, nil
	}
	return "", fmt.Errorf("%w: unknown question type %q", domain.ErrInvalidArgument, s)
}
