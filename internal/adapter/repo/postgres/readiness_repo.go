package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const readinessTracer = "repo.readiness"

// ReadinessRepo keeps one readiness row per user.
type ReadinessRepo struct{ Pool PgxPool }

func NewReadinessRepo(p PgxPool) *ReadinessRepo { return &ReadinessRepo{Pool: p} }

var _ domain.ReadinessRepository = (*ReadinessRepo)(nil)

// Upsert overwrites the user's row in a single statement.
func (r *ReadinessRepo) Upsert(ctx domain.Context, s domain.ReadinessScore) error {
	ctx, span := startSpan(ctx, readinessTracer, "readiness.Upsert", "UPSERT", "readiness_scores")
	defer span.End()
	breakdown, err := json.Marshal(s.Breakdown)
	if err != nil {
		return fmt.Errorf("op=readiness.upsert: %w", err)
	}
	q := `INSERT INTO readiness_scores (user_id, total_score, streak_weight, evaluation_weight, dsa_weight, ats_weight, mock_weight, breakdown, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	ON CONFLICT (user_id)
	DO UPDATE SET total_score=EXCLUDED.total_score, streak_weight=EXCLUDED.streak_weight, evaluation_weight=EXCLUDED.evaluation_weight, dsa_weight=EXCLUDED.dsa_weight, ats_weight=EXCLUDED.ats_weight, mock_weight=EXCLUDED.mock_weight, breakdown=EXCLUDED.breakdown, updated_at=EXCLUDED.updated_at`
	_, err = r.Pool.Exec(ctx, q, s.UserID, s.TotalScore, s.StreakWeight, s.EvaluationWeight, s.DSAWeight, s.ATSWeight, s.MockWeight, breakdown, s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("op=readiness.upsert: %w", err)
	}
	return nil
}

func (r *ReadinessRepo) Get(ctx domain.Context, userID string) (domain.ReadinessScore, error) {
	ctx, span := startSpan(ctx, readinessTracer, "readiness.Get", "SELECT", "readiness_scores")
	defer span.End()
	q := `SELECT user_id, total_score, streak_weight, evaluation_weight, dsa_weight, ats_weight, mock_weight, breakdown, updated_at FROM readiness_scores WHERE user_id=$1`
	var s domain.ReadinessScore
	var breakdown []byte
	err := r.Pool.QueryRow(ctx, q, userID).Scan(&s.UserID, &s.TotalScore, &s.StreakWeight, &s.EvaluationWeight, &s.DSAWeight, &s.ATSWeight, &s.MockWeight, &breakdown, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReadinessScore{}, fmt.Errorf("op=readiness.get: %w", domain.ErrNotFound)
		}
		return domain.ReadinessScore{}, fmt.Errorf("op=readiness.get: %w", err)
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &s.Breakdown); err != nil {
			return domain.ReadinessScore{}, fmt.Errorf("op=readiness.get: breakdown: %w", err)
		}
	}
	return s, nil
}
