package cli

import (
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/interview-engine/internal/app"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

type scoreOutput struct {
	domain.EvaluationResult
	Radar []domain.RadarPoint `json:"radar"`
}

func newScoreCmd() *cobra.Command {
	var qtype string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answer from stdin with the local scorer",
		Example: `  echo "I led a team of 5..." | evalctl score --type behavioral
  evalctl score --type technical < answer.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			qt, err := parseQuestionType(qtype)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			scorer, err := app.LoadScorer(cfg)
			if err != nil {
				return err
			}
			text, err := readInput(cmd)
			if err != nil {
				return err
			}
			res := scorer.Score(text, qt)
			return render(cmd, scoreOutput{EvaluationResult: res, Radar: res.Radar()}, scoreRows(res))
		},
	}
	cmd.Flags().StringVarP(&qtype, "type", "t", "behavioral", "question type (behavioral, hr, technical, system-design)")
	return cmd
}

func newSegmentCmd() *cobra.Command {
	var minute int
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Score one minute of live transcript from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			scorer, err := app.LoadScorer(cfg)
			if err != nil {
				return err
			}
			text, err := readInput(cmd)
			if err != nil {
				return err
			}
			seg := scorer.ScoreSegment(text, minute)
			return render(cmd, seg, segmentRows(seg))
		},
	}
	cmd.Flags().IntVarP(&minute, "minute", "m", 1, "minute index of the segment")
	return cmd
}
