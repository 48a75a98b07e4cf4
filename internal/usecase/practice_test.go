package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

var practiceNow = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestPractice(t *testing.T) (*PracticeService, testEvaluator, *fakePractice) {
	t.Helper()
	te := newTestEvaluator(t)
	repo := &fakePractice{}
	svc := NewPracticeService(te.Evaluator, repo)
	svc.now = func() time.Time { return practiceNow }
	return svc, te, repo
}

func TestSubmitAnswer_RecordsSession(t *testing.T) {
	svc, te, repo := newTestPractice(t)
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()

	rec, err := svc.SubmitAnswer(context.Background(), "u1", domain.SessionMock, behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, "sess-1", rec.ID)

	require.Len(t, repo.sessions, 1)
	s := repo.sessions[0]
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, domain.SessionMock, s.SessionType)
	assert.Equal(t, 78.0, s.OverallScore)
	assert.Equal(t, domain.SourceAI, s.Source)
	assert.Equal(t, practiceNow, s.CreatedAt)

	var stored domain.EvaluationResult
	require.NoError(t, json.Unmarshal(s.Evaluation, &stored))
	assert.Equal(t, rec.Result.Grade, stored.Grade)
}

func TestSubmitAnswer_DefaultsToPracticeAndLocal(t *testing.T) {
	svc, te, repo := newTestPractice(t)
	te.client.On("ChatJSON", any4...).Return("", domain.ErrUpstreamUnavailable)

	rec, err := svc.SubmitAnswer(context.Background(), "u1", "", behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, rec.Result.Source)
	require.Len(t, repo.sessions, 1)
	assert.Equal(t, domain.SessionPractice, repo.sessions[0].SessionType)
}

func TestSubmitAnswer_TooShortNotStored(t *testing.T) {
	svc, _, repo := newTestPractice(t)

	rec, err := svc.SubmitAnswer(context.Background(), "u1", "", domain.EvaluateRequest{Answer: "ok"})
	require.NoError(t, err)
	assert.True(t, rec.Result.TooShort)
	assert.Empty(t, rec.ID)
	assert.Empty(t, repo.sessions)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	svc, _, repo := newTestPractice(t)
	ctx := context.Background()

	_, err := svc.SubmitAnswer(ctx, "", "", behavioralRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SubmitAnswer(ctx, "u1", "panel", behavioralRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	repo.err = domain.ErrInternal
	svc.eval = NewEvaluator(EvaluatorDeps{Scorer: svc.eval.Scorer()}, EvaluatorOptions{})
	_, err = svc.SubmitAnswer(ctx, "u1", "", behavioralRequest())
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestSubmitResume(t *testing.T) {
	t.Run("stores model report", func(t *testing.T) {
		svc, te, repo := newTestPractice(t)
		te.client.On("ChatJSON", any4...).Return(atsReply, nil).Once()

		rec, err := svc.SubmitResume(context.Background(), "u1", domain.ResumeRequest{ResumeText: "Go engineer"})
		require.NoError(t, err)
		assert.Equal(t, "scan-1", rec.ID)
		require.Len(t, repo.scans, 1)
		assert.Equal(t, 72.5, repo.scans[0].ATSScore)
	})

	t.Run("fallback not stored", func(t *testing.T) {
		svc, te, repo := newTestPractice(t)
		te.client.On("ChatJSON", any4...).Return("nope", nil)

		rec, err := svc.SubmitResume(context.Background(), "u1", domain.ResumeRequest{ResumeText: "Go engineer"})
		require.NoError(t, err)
		assert.Empty(t, rec.ID)
		assert.Equal(t, domain.SourceLocal, rec.Report.Source)
		assert.Empty(t, repo.scans)
	})
}

func TestRecordDSASubmission(t *testing.T) {
	svc, _, repo := newTestPractice(t)
	ctx := context.Background()

	id, err := svc.RecordDSASubmission(ctx, "u1", "two-sum", domain.SubmissionPassed)
	require.NoError(t, err)
	assert.Equal(t, "dsa-1", id)
	require.Len(t, repo.dsa, 1)
	assert.Equal(t, "two-sum", repo.dsa[0].ProblemID)

	_, err = svc.RecordDSASubmission(ctx, "u1", "two-sum", "skipped")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.RecordDSASubmission(ctx, "u1", "", domain.SubmissionFailed)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
