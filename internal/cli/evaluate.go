package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/interview-engine/internal/app"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/usecase"
)

// withEvaluator builds the configured orchestrator for the duration of fn.
func withEvaluator(ctx context.Context, fn func(*usecase.Evaluator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scorer, err := app.LoadScorer(cfg)
	if err != nil {
		return err
	}
	rdb := openRedis(ctx, cfg)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	e, err := app.NewEvaluator(ctx, cfg, scorer, rdb)
	if err != nil {
		return err
	}
	return fn(e)
}

func newEvaluateCmd() *cobra.Command {
	var question, qtype, extra string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate an answer from stdin with the model, falling back to local scoring",
		Example: `  evalctl evaluate -q "Tell me about a conflict" < answer.txt
  AI_PROVIDER=gemini GEMINI_API_KEY=... evalctl evaluate -q "Design a cache" -t system-design < answer.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			qt, err := parseQuestionType(qtype)
			if err != nil {
				return err
			}
			answer, err := readInput(cmd)
			if err != nil {
				return err
			}
			return withEvaluator(cmd.Context(), func(e *usecase.Evaluator) error {
				res, err := e.Evaluate(cmd.Context(), domain.EvaluateRequest{
					Question:     question,
					Answer:       answer,
					Context:      extra,
					QuestionType: qt,
				})
				if err != nil {
					return err
				}
				return render(cmd, res, scoreRows(res))
			})
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "interview question being answered")
	cmd.Flags().StringVarP(&qtype, "type", "t", "behavioral", "question type (behavioral, hr, technical, system-design)")
	cmd.Flags().StringVar(&extra, "context", "", "extra context such as the target role")
	return cmd
}

func newResumeCmd() *cobra.Command {
	var jdFile string
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Run an ATS analysis of a resume read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readInput(cmd)
			if err != nil {
				return err
			}
			jd, err := readFile(jdFile)
			if err != nil {
				return err
			}
			return withEvaluator(cmd.Context(), func(e *usecase.Evaluator) error {
				rep, err := e.ScoreResume(cmd.Context(), domain.ResumeRequest{ResumeText: resume, JobDescription: jd})
				if err != nil {
					return err
				}
				return render(cmd, rep, nil)
			})
		},
	}
	cmd.Flags().StringVar(&jdFile, "jd", "", "path to a job description file")
	return cmd
}

func newQuestionsCmd() *cobra.Command {
	var req domain.QuestionGenRequest
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate practice interview questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEvaluator(cmd.Context(), func(e *usecase.Evaluator) error {
				set, err := e.GenerateQuestions(cmd.Context(), req)
				if err != nil {
					return err
				}
				return render(cmd, set, nil)
			})
		},
	}
	cmd.Flags().StringVar(&req.Role, "role", "Software Engineer", "target role")
	cmd.Flags().StringVar(&req.Type, "type", "Technical", "question type")
	cmd.Flags().StringVar(&req.Level, "level", "Mid", "seniority level")
	cmd.Flags().IntVarP(&req.Count, "count", "n", 5, "number of questions")
	cmd.Flags().StringVar(&req.Company, "company", "", "target company")
	cmd.Flags().StringVar(&req.Topics, "topics", "", "comma separated topics")
	return cmd
}
