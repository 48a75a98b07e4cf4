package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

// render writes v as JSON, or as a table when --output=table and the
// command knows how to tabulate v.
func render(cmd *cobra.Command, v any, rows func(*tablewriter.Table) error) error {
	format := outputJSON
	if f := cmd.Flag("output"); f != nil {
		format = f.Value.String()
	}
	switch format {
	case outputJSON:
		return printJSON(cmd, v)
	case outputTable:
		if rows == nil {
			return fmt.Errorf("%w: %s does not support table output", domain.ErrInvalidArgument, cmd.Name())
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		if err := rows(table); err != nil {
			return err
		}
		return table.Render()
	}
	return fmt.Errorf("%w: unknown output format %q", domain.ErrInvalidArgument, format)
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func scoreRows(res domain.EvaluationResult) func(*tablewriter.Table) error {
	return func(t *tablewriter.Table) error {
		t.Header("Dimension", "Score")
		for _, p := range res.Radar() {
			if err := t.Append(p.Name, num(p.Score)); err != nil {
				return err
			}
		}
		if err := t.Append("Overall", num(res.OverallScore)+" ("+string(res.Grade)+")"); err != nil {
			return err
		}
		return nil
	}
}

func segmentRows(seg domain.SegmentResult) func(*tablewriter.Table) error {
	return func(t *tablewriter.Table) error {
		t.Header("Minute", "Score", "Grade", "WPM", "Fillers", "Feedback")
		return t.Append(
			strconv.Itoa(seg.Minute),
			num(seg.Score),
			seg.Grade,
			strconv.Itoa(seg.WPM),
			strconv.Itoa(seg.FillerCount),
			seg.Feedback,
		)
	}
}

func readinessRows(s domain.ReadinessScore) func(*tablewriter.Table) error {
	return func(t *tablewriter.Table) error {
		t.Header("Component", "Input", "Points")
		rows := [][]any{
			{"Streak", strconv.Itoa(s.Breakdown.StreakDays) + " days", num(s.StreakWeight)},
			{"Evaluations", num(s.Breakdown.AvgInterviewScore) + " avg", num(s.EvaluationWeight)},
			{"DSA", strconv.Itoa(s.Breakdown.DSASolved) + " solved", num(s.DSAWeight)},
			{"ATS", num(s.Breakdown.LatestATS), num(s.ATSWeight)},
			{"Mocks", strconv.Itoa(s.Breakdown.MocksCompleted) + " done", num(s.MockWeight)},
			{"Total", "", num(s.TotalScore)},
		}
		for _, r := range rows {
			if err := t.Append(r...); err != nil {
				return err
			}
		}
		return nil
	}
}
