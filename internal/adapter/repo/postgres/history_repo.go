package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const historyTracer = "repo.history"

// HistoryRepo runs the aggregate reads behind readiness scoring.
type HistoryRepo struct{ Pool PgxPool }

func NewHistoryRepo(p PgxPool) *HistoryRepo { return &HistoryRepo{Pool: p} }

var _ domain.HistoryRepository = (*HistoryRepo)(nil)

func (r *HistoryRepo) PracticeDays(ctx domain.Context, userID string, since time.Time) ([]time.Time, error) {
	ctx, span := startSpan(ctx, historyTracer, "history.PracticeDays", "SELECT", "practice_streaks")
	defer span.End()
	q := `SELECT day FROM practice_streaks WHERE user_id=$1 AND day >= $2::date ORDER BY day DESC`
	rows, err := r.Pool.Query(ctx, q, userID, since.UTC().Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("op=history.practice_days: %w", err)
	}
	defer rows.Close()
	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("op=history.practice_days: scan: %w", err)
		}
		days = append(days, d.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=history.practice_days: %w", err)
	}
	return days, nil
}

func (r *HistoryRepo) AverageInterviewScore(ctx domain.Context, userID string) (float64, int, error) {
	ctx, span := startSpan(ctx, historyTracer, "history.AverageInterviewScore", "SELECT", "interview_sessions")
	defer span.End()
	q := `SELECT COALESCE(AVG(overall_score), 0), COUNT(*) FROM interview_sessions WHERE user_id=$1`
	var avg float64
	var n int
	if err := r.Pool.QueryRow(ctx, q, userID).Scan(&avg, &n); err != nil {
		return 0, 0, fmt.Errorf("op=history.average_score: %w", err)
	}
	return avg, n, nil
}

func (r *HistoryRepo) DistinctSolvedProblems(ctx domain.Context, userID string) (int, error) {
	ctx, span := startSpan(ctx, historyTracer, "history.DistinctSolvedProblems", "SELECT", "dsa_submissions")
	defer span.End()
	q := `SELECT COUNT(DISTINCT problem_id) FROM dsa_submissions WHERE user_id=$1 AND status=$2`
	var n int
	if err := r.Pool.QueryRow(ctx, q, userID, domain.SubmissionPassed).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=history.solved_problems: %w", err)
	}
	return n, nil
}

func (r *HistoryRepo) LatestATSScore(ctx domain.Context, userID string) (float64, error) {
	ctx, span := startSpan(ctx, historyTracer, "history.LatestATSScore", "SELECT", "resume_scans")
	defer span.End()
	q := `SELECT ats_score FROM resume_scans WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`
	var score float64
	if err := r.Pool.QueryRow(ctx, q, userID).Scan(&score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("op=history.latest_ats: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("op=history.latest_ats: %w", err)
	}
	return score, nil
}

func (r *HistoryRepo) CompletedMockSessions(ctx domain.Context, userID string) (int, error) {
	ctx, span := startSpan(ctx, historyTracer, "history.CompletedMockSessions", "SELECT", "interview_sessions")
	defer span.End()
	q := `SELECT COUNT(*) FROM interview_sessions WHERE user_id=$1 AND session_type=$2`
	var n int
	if err := r.Pool.QueryRow(ctx, q, userID, domain.SessionMock).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=history.mock_sessions: %w", err)
	}
	return n, nil
}

// ActiveUsers lists users with a practice day, submission or resume scan since the cutoff.
func (r *HistoryRepo) ActiveUsers(ctx domain.Context, since time.Time) ([]string, error) {
	ctx, span := startSpan(ctx, historyTracer, "history.ActiveUsers", "SELECT", "practice_streaks")
	defer span.End()
	q := `SELECT user_id FROM practice_streaks WHERE day >= $1::date
	UNION SELECT user_id FROM dsa_submissions WHERE created_at >= $2
	UNION SELECT user_id FROM resume_scans WHERE created_at >= $2
	ORDER BY user_id`
	rows, err := r.Pool.Query(ctx, q, since.UTC().Format(time.DateOnly), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("op=history.active_users: %w", err)
	}
	defer rows.Close()
	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("op=history.active_users: scan: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=history.active_users: %w", err)
	}
	return users, nil
}
