package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// PracticeService records practice activity. Every record it writes feeds
// the readiness history queries.
type PracticeService struct {
	eval *Evaluator
	repo domain.PracticeRepository
	now  func() time.Time
}

func NewPracticeService(eval *Evaluator, repo domain.PracticeRepository) *PracticeService {
	return &PracticeService{eval: eval, repo: repo, now: time.Now}
}

// AnswerRecord is the stored outcome of one submitted answer.
type AnswerRecord struct {
	ID     string                  `json:"id"`
	Result domain.EvaluationResult `json:"result"`
}

// SubmitAnswer evaluates an answer and appends it to the user's interview
// history. Too-short answers are returned but not stored.
func (s *PracticeService) SubmitAnswer(ctx context.Context, userID, sessionType string, req domain.EvaluateRequest) (AnswerRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return AnswerRecord{}, fmt.Errorf("op=usecase.SubmitAnswer: %w: user id required", domain.ErrInvalidArgument)
	}
	switch sessionType {
	case "":
		sessionType = domain.SessionPractice
	case domain.SessionPractice, domain.SessionMock:
	default:
		return AnswerRecord{}, fmt.Errorf("op=usecase.SubmitAnswer: %w: unknown session type %q", domain.ErrInvalidArgument, sessionType)
	}

	ctx = observability.WithLogAttrs(ctx, slog.String("user_id", userID))
	res, err := s.eval.Evaluate(ctx, req)
	if err != nil {
		return AnswerRecord{}, fmt.Errorf("op=usecase.SubmitAnswer: %w", err)
	}
	if res.TooShort {
		return AnswerRecord{Result: res}, nil
	}

	blob, err := json.Marshal(res)
	if err != nil {
		return AnswerRecord{}, fmt.Errorf("op=usecase.SubmitAnswer: %w", err)
	}
	id, err := s.repo.RecordSession(ctx, domain.InterviewSession{
		UserID:       userID,
		SessionType:  sessionType,
		Question:     req.Question,
		OverallScore: res.OverallScore,
		Grade:        res.Grade,
		Source:       res.Source,
		Evaluation:   blob,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return AnswerRecord{}, fmt.Errorf("op=usecase.SubmitAnswer: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("answer recorded",
		slog.String("session_id", id),
		slog.String("source", string(res.Source)),
		slog.Float64("overall_score", res.OverallScore))
	return AnswerRecord{ID: id, Result: res}, nil
}

// ResumeRecord is the stored outcome of one resume scan. ID is empty when
// the analysis fell back and nothing was stored.
type ResumeRecord struct {
	ID     string                 `json:"id,omitempty"`
	Report domain.ResumeATSReport `json:"report"`
}

// SubmitResume scores a resume and stores the scan. Fallback reports are
// not stored, so a provider outage never lowers the latest ATS score.
func (s *PracticeService) SubmitResume(ctx context.Context, userID string, req domain.ResumeRequest) (ResumeRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return ResumeRecord{}, fmt.Errorf("op=usecase.SubmitResume: %w: user id required", domain.ErrInvalidArgument)
	}
	ctx = observability.WithLogAttrs(ctx, slog.String("user_id", userID))
	rep, err := s.eval.ScoreResume(ctx, req)
	if err != nil {
		return ResumeRecord{}, fmt.Errorf("op=usecase.SubmitResume: %w", err)
	}
	if rep.Source != domain.SourceAI {
		return ResumeRecord{Report: rep}, nil
	}
	blob, err := json.Marshal(rep)
	if err != nil {
		return ResumeRecord{}, fmt.Errorf("op=usecase.SubmitResume: %w", err)
	}
	id, err := s.repo.RecordResumeScan(ctx, domain.ResumeScan{
		UserID:    userID,
		ATSScore:  rep.ATSScore,
		Report:    blob,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return ResumeRecord{}, fmt.Errorf("op=usecase.SubmitResume: %w", err)
	}
	return ResumeRecord{ID: id, Report: rep}, nil
}

// RecordDSASubmission stores the outcome of one coding problem attempt.
func (s *PracticeService) RecordDSASubmission(ctx context.Context, userID, problemID, status string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(problemID) == "" {
		return "", fmt.Errorf("op=usecase.RecordDSASubmission: %w: user and problem id required", domain.ErrInvalidArgument)
	}
	if status != domain.SubmissionPassed && status != domain.SubmissionFailed {
		return "", fmt.Errorf("op=usecase.RecordDSASubmission: %w: unknown status %q", domain.ErrInvalidArgument, status)
	}
	id, err := s.repo.RecordDSASubmission(ctx, domain.DSASubmission{
		UserID:    userID,
		ProblemID: problemID,
		Status:    status,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("op=usecase.RecordDSASubmission: %w", err)
	}
	return id, nil
}
