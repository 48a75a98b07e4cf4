// Package usecase wires the scorers, the model orchestrator and the
// repositories into the engine's operations.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai"
	"github.com/fairyhunter13/interview-engine/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/scoring"
	"github.com/fairyhunter13/interview-engine/pkg/numx"
	"github.com/fairyhunter13/interview-engine/pkg/textx"
)

// RateLimiter throttles outbound model calls per provider.
type RateLimiter interface {
	Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error)
}

// EvaluatorDeps collects the collaborators of an Evaluator. Only Scorer and
// Validator are required; a nil AI client keeps every call on the local path.
type EvaluatorDeps struct {
	AI        domain.AIClient
	Scorer    *scoring.Scorer
	Validator *ai.ResponseValidator
	Cache     *ai.ResponseCache
	Retry     *ai.RetryPolicy
	Breaker   *ai.Breaker
	Limiter   RateLimiter
	Drift     *observability.ScoreDriftMonitor
	Tokens    *tokencount.Counter
}

// EvaluatorOptions tunes an Evaluator.
type EvaluatorOptions struct {
	Model             string
	Timeout           time.Duration
	MaxTokens         int
	PromptTokenBudget int
	Workers           int64
}

// Evaluator is the model orchestrator. Every kind goes through the same
// pipeline: cache lookup, de-duplicated model call under retry and circuit
// breaking, JSON extraction, schema validation, and cache write.
type Evaluator struct {
	ai        domain.AIClient
	provider  string
	scorer    *scoring.Scorer
	validator *ai.ResponseValidator
	cache     *ai.ResponseCache
	retry     *ai.RetryPolicy
	breaker   *ai.Breaker
	limiter   RateLimiter
	drift     *observability.ScoreDriftMonitor
	tokens    *tokencount.Counter
	opts      EvaluatorOptions

	group    singleflight.Group
	sem      *semaphore.Weighted
	validate *validator.Validate
}

func NewEvaluator(deps EvaluatorDeps, opts EvaluatorOptions) *Evaluator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	retry := deps.Retry
	if retry == nil {
		retry = ai.NewRetryPolicy(domain.DefaultRetryConfig())
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = tokencount.DefaultCounter
	}
	provider := "unknown"
	if p, ok := deps.AI.(domain.ProviderNamer); ok {
		provider = p.Provider()
	}
	return &Evaluator{
		ai:        deps.AI,
		provider:  provider,
		scorer:    deps.Scorer,
		validator: deps.Validator,
		cache:     deps.Cache,
		retry:     retry,
		breaker:   deps.Breaker,
		limiter:   deps.Limiter,
		drift:     deps.Drift,
		tokens:    tokens,
		opts:      opts,
		sem:       semaphore.NewWeighted(opts.Workers),
		validate:  validator.New(),
	}
}

// AIEnabled reports whether a model provider is configured.
func (e *Evaluator) AIEnabled() bool { return e.ai != nil }

// Scorer exposes the local scorer.
func (e *Evaluator) Scorer() *scoring.Scorer { return e.scorer }

// Prompt caps for the free-text fields around the answer. The answer itself
// is cut to the token budget instead.
const (
	maxQuestionRunes = 4000
	maxContextRunes  = 8000
)

// Evaluate scores one answer. The local result is always computed; the model
// result replaces it when the whole pipeline succeeds within the timeout.
// Evaluate does not fail: every problem degrades to the local result.
func (e *Evaluator) Evaluate(ctx context.Context, req domain.EvaluateRequest) (domain.EvaluationResult, error) {
	req.Question = textx.Truncate(req.Question, maxQuestionRunes)
	req.Context = textx.Truncate(req.Context, maxContextRunes)
	ctx, span := otel.Tracer("usecase.evaluator").Start(ctx, "Evaluator.Evaluate")
	defer span.End()

	local := e.scorer.Score(req.Answer, req.QuestionType)
	if local.TooShort || e.ai == nil {
		observability.ObserveEvaluation(string(local.Source), local.OverallScore)
		return local, nil
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	data := newEvaluationPromptData(req, *local.Features)
	data.Answer = e.budget(ctx, data.Answer)
	system, user, err := renderPrompt(ai.KindEvaluation, data)
	if err != nil {
		return e.fallbackEvaluation(ctx, ai.KindEvaluation, local, err), nil
	}

	res, err := invoke[domain.EvaluationResult](ctx, e, ai.KindEvaluation, system, user)
	if err != nil {
		return e.fallbackEvaluation(ctx, ai.KindEvaluation, local, err), nil
	}

	res.OverallScore = numx.Round(numx.Clamp(res.OverallScore, 0, 100), 1)
	res.Grade = e.scorer.Grade(res.OverallScore)
	res.Source = domain.SourceAI
	res.FillerPenalty = local.FillerPenalty
	res.Features = local.Features
	span.SetAttributes(attribute.String("evaluation.source", string(res.Source)))

	e.drift.Record(string(ai.KindEvaluation), res.OverallScore, local.OverallScore)
	observability.ObserveEvaluation(string(res.Source), res.OverallScore)
	return res, nil
}

func (e *Evaluator) fallbackEvaluation(ctx context.Context, kind ai.Kind, local domain.EvaluationResult, err error) domain.EvaluationResult {
	reason := fallbackReason(err)
	observability.RecordFallback(string(kind), reason)
	observability.LoggerFromContext(ctx).Warn("model evaluation failed, using local result",
		slog.String("kind", string(kind)),
		slog.String("reason", reason),
		slog.Any("error", err))
	observability.ObserveEvaluation(string(local.Source), local.OverallScore)
	return local
}

// EvaluationOutcome is delivered by EvaluateAsync.
type EvaluationOutcome struct {
	Result domain.EvaluationResult
	Err    error
}

// EvaluateAsync runs Evaluate on the bounded worker pool. It blocks only
// until a worker slot is free (or ctx ends); the outcome arrives on the
// returned channel, which is closed afterwards.
func (e *Evaluator) EvaluateAsync(ctx context.Context, req domain.EvaluateRequest) (<-chan EvaluationOutcome, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("op=usecase.EvaluateAsync: %w", err)
	}
	out := make(chan EvaluationOutcome, 1)
	go func() {
		defer close(out)
		defer e.sem.Release(1)
		res, err := e.Evaluate(ctx, req)
		out <- EvaluationOutcome{Result: res, Err: err}
	}()
	return out, nil
}

// ScoreSegment scores one minute of live transcript.
func (e *Evaluator) ScoreSegment(text string, minute int) domain.SegmentResult {
	res := e.scorer.ScoreSegment(text, minute)
	observability.ObserveSegment(res.Score)
	return res
}

// budget trims text so the prompt stays under the configured token budget.
func (e *Evaluator) budget(ctx context.Context, text string) string {
	trimmed, cut := e.tokens.TrimToBudget(text, e.opts.Model, e.opts.PromptTokenBudget)
	if cut {
		observability.LoggerFromContext(ctx).Info("answer trimmed to prompt token budget", slog.Int("budget", e.opts.PromptTokenBudget))
	}
	return trimmed
}

// invoke runs the model pipeline for kind and decodes the validated
// document into T. Concurrent identical prompts share one model call.
func invoke[T any](ctx context.Context, e *Evaluator, kind ai.Kind, system, user string) (T, error) {
	var zero T
	if e.ai == nil {
		observability.RecordInvocation(string(kind), "disabled")
		return zero, fmt.Errorf("op=usecase.invoke: %w: no model provider configured", domain.ErrUpstreamUnavailable)
	}
	key := e.cache.Key(system, user)

	doc, err := e.fromCache(ctx, kind, key)
	if err == nil {
		observability.RecordInvocation(string(kind), "cache_hit")
	} else {
		// The shared call outlives any single caller; each caller waits on its own ctx.
		ch := e.group.DoChan(key, func() (any, error) {
			callCtx := context.WithoutCancel(ctx)
			if e.opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(callCtx, e.opts.Timeout)
				defer cancel()
			}
			return e.callModel(callCtx, kind, key, system, user)
		})
		var res singleflight.Result
		select {
		case <-ctx.Done():
			observability.RecordInvocation(string(kind), "error")
			return zero, fmt.Errorf("op=usecase.invoke: %w", ctx.Err())
		case res = <-ch:
		}
		if res.Err != nil {
			observability.RecordInvocation(string(kind), "error")
			return zero, res.Err
		}
		if res.Shared {
			observability.LoggerFromContext(ctx).Debug("model call shared with concurrent caller", slog.String("kind", string(kind)))
		}
		doc = res.Val.([]byte)
		observability.RecordInvocation(string(kind), "ok")
	}

	var out T
	if err := json.Unmarshal(doc, &out); err != nil {
		return zero, fmt.Errorf("op=usecase.invoke: %w: %v", domain.ErrSchemaInvalid, err)
	}
	return out, nil
}

var errCacheMiss = errors.New("cache miss")

// fromCache returns the validated cached document for key. A cached reply
// that no longer validates is treated as a miss.
func (e *Evaluator) fromCache(ctx context.Context, kind ai.Kind, key string) ([]byte, error) {
	raw, ok := e.cache.Get(ctx, key)
	if !ok {
		return nil, errCacheMiss
	}
	doc, err := e.parse(kind, raw)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("discarding invalid cached reply", slog.String("kind", string(kind)), slog.Any("error", err))
		return nil, errCacheMiss
	}
	return doc, nil
}

func (e *Evaluator) callModel(ctx context.Context, kind ai.Kind, key, system, user string) ([]byte, error) {
	ctx, span := otel.Tracer("usecase.evaluator").Start(ctx, "Evaluator.callModel")
	defer span.End()
	span.SetAttributes(attribute.String("ai.kind", string(kind)), attribute.String("ai.provider", e.provider))

	retryable := e.retry.Config().IsRetryable
	var raw string
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		if e.limiter != nil {
			if ok, wait, _ := e.limiter.Allow(ctx, e.provider, 1); !ok {
				return fmt.Errorf("%w: local call budget exhausted, next slot in %s", domain.ErrUpstreamRateLimit, wait)
			}
		}
		if err := e.breaker.Allow(); err != nil {
			return err
		}
		out, err := e.ai.ChatJSON(ctx, system, user, e.opts.MaxTokens)
		if err != nil {
			// Canceled and rejected calls neither open nor close the circuit.
			if !errors.Is(err, context.Canceled) && retryable(err) {
				e.breaker.RecordFailure()
			} else {
				e.breaker.Abandon()
			}
			return err
		}
		e.breaker.RecordSuccess()
		raw = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("op=usecase.callModel: %w", err)
	}

	doc, err := e.parse(kind, raw)
	if err != nil {
		return nil, err
	}
	e.cache.Set(ctx, key, raw)
	return doc, nil
}

// parse extracts and validates the JSON document of a raw reply.
func (e *Evaluator) parse(kind ai.Kind, raw string) ([]byte, error) {
	text, err := ai.ExtractJSON(raw)
	if err != nil {
		if ai.IsRefusal(raw) {
			return nil, fmt.Errorf("op=usecase.parse: %w", domain.ErrRefusal)
		}
		return nil, err
	}
	return e.validator.Validate(kind, text)
}

// fallbackReason labels an orchestration failure for metrics.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, domain.ErrRefusal):
		return "refusal"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, domain.ErrSchemaInvalid):
		return "schema"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return "rate_limit"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_request"
	}
	return "error"
}
