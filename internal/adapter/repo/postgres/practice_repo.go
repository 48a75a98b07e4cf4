package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const practiceTracer = "repo.practice"

// PracticeRepo appends practice records.
type PracticeRepo struct {
	Pool PgxPool
	Now  func() time.Time
}

func NewPracticeRepo(p PgxPool) *PracticeRepo { return &PracticeRepo{Pool: p, Now: time.Now} }

var _ domain.PracticeRepository = (*PracticeRepo)(nil)

func (r *PracticeRepo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// RecordSession inserts the session and bumps the user's practice day in
// one transaction. IDs are ULIDs so they sort by creation time.
func (r *PracticeRepo) RecordSession(ctx domain.Context, s domain.InterviewSession) (string, error) {
	ctx, span := startSpan(ctx, practiceTracer, "practice.RecordSession", "INSERT", "interview_sessions")
	defer span.End()

	id := s.ID
	if id == "" {
		id = ulid.Make().String()
	}
	createdAt := s.CreatedAt.UTC()
	if s.CreatedAt.IsZero() {
		createdAt = r.now()
	}
	evaluation := s.Evaluation
	if len(evaluation) == 0 {
		evaluation = []byte("{}")
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("op=practice.record_session: begin: %w", err)
	}
	insert := `INSERT INTO interview_sessions (id, user_id, session_type, question, overall_score, grade, source, evaluation, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := tx.Exec(ctx, insert, id, s.UserID, s.SessionType, s.Question, s.OverallScore, string(s.Grade), string(s.Source), []byte(evaluation), createdAt); err != nil {
		_ = tx.Rollback(ctx)
		return "", fmt.Errorf("op=practice.record_session: %w", err)
	}
	streak := `INSERT INTO practice_streaks (user_id, day, sessions) VALUES ($1, $2::date, 1)
	ON CONFLICT (user_id, day) DO UPDATE SET sessions = practice_streaks.sessions + 1`
	if _, err := tx.Exec(ctx, streak, s.UserID, createdAt.Format(time.DateOnly)); err != nil {
		_ = tx.Rollback(ctx)
		return "", fmt.Errorf("op=practice.record_session: streak: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("op=practice.record_session: commit: %w", err)
	}
	return id, nil
}

func (r *PracticeRepo) RecordResumeScan(ctx domain.Context, s domain.ResumeScan) (string, error) {
	ctx, span := startSpan(ctx, practiceTracer, "practice.RecordResumeScan", "INSERT", "resume_scans")
	defer span.End()
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := s.CreatedAt.UTC()
	if s.CreatedAt.IsZero() {
		createdAt = r.now()
	}
	report := s.Report
	if len(report) == 0 {
		report = []byte("{}")
	}
	q := `INSERT INTO resume_scans (id, user_id, ats_score, report, created_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.Pool.Exec(ctx, q, id, s.UserID, s.ATSScore, []byte(report), createdAt); err != nil {
		return "", fmt.Errorf("op=practice.record_resume: %w", err)
	}
	return id, nil
}

func (r *PracticeRepo) RecordDSASubmission(ctx domain.Context, s domain.DSASubmission) (string, error) {
	ctx, span := startSpan(ctx, practiceTracer, "practice.RecordDSASubmission", "INSERT", "dsa_submissions")
	defer span.End()
	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := s.CreatedAt.UTC()
	if s.CreatedAt.IsZero() {
		createdAt = r.now()
	}
	q := `INSERT INTO dsa_submissions (id, user_id, problem_id, status, created_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.Pool.Exec(ctx, q, id, s.UserID, s.ProblemID, s.Status, createdAt); err != nil {
		return "", fmt.Errorf("op=practice.record_dsa: %w", err)
	}
	return id, nil
}
