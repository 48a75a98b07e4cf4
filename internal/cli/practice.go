package cli

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/interview-engine/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-engine/internal/app"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/usecase"
)

var errUserRequired = errors.New("--user is required")

func withPool(ctx context.Context, fn func(*pgxpool.Pool) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(pool)
}

func newSubmitCmd() *cobra.Command {
	var user, session, question, qtype string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Evaluate an answer from stdin and record it in the user's history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				return errUserRequired
			}
			qt, err := parseQuestionType(qtype)
			if err != nil {
				return err
			}
			answer, err := readInput(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withPool(ctx, func(pool *pgxpool.Pool) error {
				return withEvaluator(ctx, func(e *usecase.Evaluator) error {
					svc := usecase.NewPracticeService(e, postgres.NewPracticeRepo(pool))
					rec, err := svc.SubmitAnswer(ctx, user, session, domain.EvaluateRequest{
						Question:     question,
						Answer:       answer,
						QuestionType: qt,
					})
					if err != nil {
						return err
					}
					return render(cmd, rec, scoreRows(rec.Result))
				})
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().StringVar(&session, "session", domain.SessionPractice, "session type (practice, mock)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "interview question being answered")
	cmd.Flags().StringVarP(&qtype, "type", "t", "behavioral", "question type")
	return cmd
}

func newDSACmd() *cobra.Command {
	var user, problem string
	var passed bool
	cmd := &cobra.Command{
		Use:   "dsa",
		Short: "Record a coding problem submission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				return errUserRequired
			}
			status := domain.SubmissionFailed
			if passed {
				status = domain.SubmissionPassed
			}
			ctx := cmd.Context()
			return withPool(ctx, func(pool *pgxpool.Pool) error {
				svc := usecase.NewPracticeService(nil, postgres.NewPracticeRepo(pool))
				id, err := svc.RecordDSASubmission(ctx, user, problem, status)
				if err != nil {
					return err
				}
				return render(cmd, map[string]string{"id": id, "status": status}, nil)
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&problem, "problem", "p", "", "problem id")
	cmd.Flags().BoolVar(&passed, "passed", false, "the submission passed all tests")
	return cmd
}

func newReadinessCmd() *cobra.Command {
	var recompute bool
	cmd := &cobra.Command{
		Use:   "readiness USER_ID",
		Short: "Show a user's readiness score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			scorer, err := app.LoadScorer(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return withPool(ctx, func(pool *pgxpool.Pool) error {
				svc := usecase.NewReadinessService(
					postgres.NewHistoryRepo(pool),
					postgres.NewReadinessRepo(pool),
					scorer.Config().Readiness,
					cfg.ReadinessConcurrency,
				)
				var score domain.ReadinessScore
				if recompute {
					score, err = svc.Compute(ctx, args[0])
				} else {
					score, err = svc.Get(ctx, args[0])
				}
				if err != nil {
					return err
				}
				return render(cmd, score, readinessRows(score))
			})
		},
	}
	cmd.Flags().BoolVar(&recompute, "recompute", false, "recompute from history instead of reading the stored score")
	return cmd
}
