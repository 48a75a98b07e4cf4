package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-engine/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

var fixedNow = time.Date(2026, 3, 15, 23, 45, 0, 0, time.UTC)

func newPracticeRepo(pool postgres.PgxPool) *postgres.PracticeRepo {
	r := postgres.NewPracticeRepo(pool)
	r.Now = func() time.Time { return fixedNow }
	return r
}

func TestPracticeRepo_RecordSession(t *testing.T) {
	tx := &txStub{}
	repo := newPracticeRepo(&poolStub{tx: tx})

	id, err := repo.RecordSession(context.Background(), domain.InterviewSession{
		UserID:       "u1",
		SessionType:  domain.SessionPractice,
		Question:     "Tell me about yourself",
		OverallScore: 62.7,
		Grade:        domain.GradeCPlus,
		Source:       domain.SourceLocal,
		Evaluation:   json.RawMessage(`{"overall_score":62.7}`),
	})
	require.NoError(t, err)
	_, err = ulid.Parse(id)
	assert.NoError(t, err)

	require.Len(t, tx.execs, 2)
	assert.Contains(t, tx.execs[0].sql, "INSERT INTO interview_sessions")
	assert.Equal(t, "C+", tx.execs[0].args[5])
	assert.Equal(t, fixedNow, tx.execs[0].args[8])
	assert.Contains(t, tx.execs[1].sql, "practice_streaks")
	assert.Equal(t, []any{"u1", "2026-03-15"}, tx.execs[1].args)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestPracticeRepo_RecordSession_RollsBack(t *testing.T) {
	for _, failOn := range []int{1, 2} {
		tx := &txStub{failOnExec: failOn}
		_, err := newPracticeRepo(&poolStub{tx: tx}).RecordSession(context.Background(), domain.InterviewSession{UserID: "u1"})
		require.Error(t, err)
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
	}

	_, err := newPracticeRepo(&poolStub{beginErr: assert.AnError}).RecordSession(context.Background(), domain.InterviewSession{UserID: "u1"})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = newPracticeRepo(&poolStub{tx: &txStub{commitErr: assert.AnError}}).RecordSession(context.Background(), domain.InterviewSession{UserID: "u1"})
	assert.Contains(t, err.Error(), "commit")
}

func TestPracticeRepo_RecordSession_KeepsCallerFields(t *testing.T) {
	tx := &txStub{}
	created := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	id, err := newPracticeRepo(&poolStub{tx: tx}).RecordSession(context.Background(), domain.InterviewSession{
		ID: "fixed-id", UserID: "u1", CreatedAt: created,
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
	assert.Equal(t, []byte("{}"), tx.execs[0].args[7])
	assert.Equal(t, "2026-03-10", tx.execs[1].args[1])
}

func TestPracticeRepo_RecordResumeScan(t *testing.T) {
	pool := &poolStub{}
	id, err := newPracticeRepo(pool).RecordResumeScan(context.Background(), domain.ResumeScan{UserID: "u1", ATSScore: 72})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, 72.0, pool.execs[0].args[2])

	_, err = newPracticeRepo(&poolStub{execErr: assert.AnError}).RecordResumeScan(context.Background(), domain.ResumeScan{UserID: "u1"})
	assert.Contains(t, err.Error(), "op=practice.record_resume")
}

func TestPracticeRepo_RecordDSASubmission(t *testing.T) {
	pool := &poolStub{}
	id, err := newPracticeRepo(pool).RecordDSASubmission(context.Background(), domain.DSASubmission{
		UserID: "u1", ProblemID: "two-sum", Status: domain.SubmissionPassed,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []any{id, "u1", "two-sum", "passed", fixedNow}, pool.execs[0].args)
}
