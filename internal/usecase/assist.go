package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai"
	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/pkg/numx"
)

// resumeFallbackSummary is reported when the ATS analysis could not run.
const resumeFallbackSummary = "Resume analysis is temporarily unavailable. Please try again shortly."

// ScoreResume runs an ATS analysis of a resume against an optional job
// description. On model failure it returns a zero-score report tagged local.
func (e *Evaluator) ScoreResume(ctx context.Context, req domain.ResumeRequest) (domain.ResumeATSReport, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.ResumeATSReport{}, fmt.Errorf("op=usecase.ScoreResume: %w: %v", domain.ErrInvalidArgument, err)
	}
	req.ResumeText = e.budget(ctx, req.ResumeText)
	rep, err := assist[domain.ResumeATSReport](ctx, e, ai.KindResumeATS, req)
	if err != nil {
		return domain.ResumeATSReport{
			ATSScore:         0,
			MatchingKeywords: []string{},
			MissingKeywords:  []string{},
			FormattingIssues: []string{},
			SectionAnalysis:  map[string]float64{},
			Suggestions:      []string{},
			Summary:          resumeFallbackSummary,
			Source:           domain.SourceLocal,
		}, nil
	}
	rep.ATSScore = numx.Round(numx.Clamp(rep.ATSScore, 0, 100), 1)
	rep.Source = domain.SourceAI
	return rep, nil
}

func (e *Evaluator) ReviewCode(ctx context.Context, req domain.CodeReviewRequest) (domain.CodeReview, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.CodeReview{}, fmt.Errorf("op=usecase.ReviewCode: %w: %v", domain.ErrInvalidArgument, err)
	}
	return assistOrUnavailable[domain.CodeReview](ctx, e, ai.KindCodeReview, req)
}

func (e *Evaluator) PlanStudy(ctx context.Context, req domain.StudyPlanRequest) (domain.StudyPlan, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.StudyPlan{}, fmt.Errorf("op=usecase.PlanStudy: %w: %v", domain.ErrInvalidArgument, err)
	}
	return assistOrUnavailable[domain.StudyPlan](ctx, e, ai.KindStudyPlan, req)
}

func (e *Evaluator) EvaluateSystemDesign(ctx context.Context, req domain.SystemDesignRequest) (domain.SystemDesignReview, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.SystemDesignReview{}, fmt.Errorf("op=usecase.EvaluateSystemDesign: %w: %v", domain.ErrInvalidArgument, err)
	}
	req.Answer = e.budget(ctx, req.Answer)
	return assistOrUnavailable[domain.SystemDesignReview](ctx, e, ai.KindSystemDesign, req)
}

// ReviewBehavioral grades a behavioral answer against the STAR method.
func (e *Evaluator) ReviewBehavioral(ctx context.Context, req domain.BehavioralRequest) (domain.BehavioralReview, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.BehavioralReview{}, fmt.Errorf("op=usecase.ReviewBehavioral: %w: %v", domain.ErrInvalidArgument, err)
	}
	req.Answer = e.budget(ctx, req.Answer)
	return assistOrUnavailable[domain.BehavioralReview](ctx, e, ai.KindBehavioral, req)
}

func (e *Evaluator) PrepareCompany(ctx context.Context, req domain.CompanyPrepRequest) (domain.CompanyPrep, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.CompanyPrep{}, fmt.Errorf("op=usecase.PrepareCompany: %w: %v", domain.ErrInvalidArgument, err)
	}
	return assistOrUnavailable[domain.CompanyPrep](ctx, e, ai.KindCompanyPrep, req)
}

// GenerateQuestions drafts interview questions. It degrades to an empty set
// instead of failing.
func (e *Evaluator) GenerateQuestions(ctx context.Context, req domain.QuestionGenRequest) (domain.QuestionSet, error) {
	if err := e.validate.Struct(req); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("op=usecase.GenerateQuestions: %w: %v", domain.ErrInvalidArgument, err)
	}
	set, err := assist[domain.QuestionSet](ctx, e, ai.KindQuestionGen, req)
	if err != nil {
		return domain.QuestionSet{Questions: []domain.GeneratedQuestion{}}, nil
	}
	if len(set.Questions) > req.Count {
		set.Questions = set.Questions[:req.Count]
	}
	return set, nil
}

// assist renders the prompt of kind and runs it through the pipeline. Every
// failure is counted and logged as a fallback before it is returned.
func assist[T any](ctx context.Context, e *Evaluator, kind ai.Kind, data any) (T, error) {
	var zero T
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}
	system, user, err := renderPrompt(kind, data)
	if err == nil {
		var out T
		if out, err = invoke[T](ctx, e, kind, system, user); err == nil {
			return out, nil
		}
	}
	reason := fallbackReason(err)
	observability.RecordFallback(string(kind), reason)
	observability.LoggerFromContext(ctx).Warn("assist call failed",
		slog.String("kind", string(kind)),
		slog.String("reason", reason),
		slog.Any("error", err))
	return zero, err
}

func assistOrUnavailable[T any](ctx context.Context, e *Evaluator, kind ai.Kind, data any) (T, error) {
	out, err := assist[T](ctx, e, kind, data)
	if err != nil {
		return out, fmt.Errorf("op=usecase.%s: %w: %v", kind, domain.ErrUpstreamUnavailable, err)
	}
	return out, nil
}
