package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/scoring"
)

var any4 = []any{mock.Anything, mock.Anything, mock.Anything, mock.Anything}

func behavioralRequest() domain.EvaluateRequest {
	return domain.EvaluateRequest{
		Question:     "Tell me about a time you improved performance.",
		Answer:       starAnswer,
		QuestionType: domain.QuestionBehavioral,
	}
}

func TestEvaluate_ModelSuccess(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()

	res, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceAI, res.Source)
	assert.Equal(t, 78.0, res.OverallScore)
	assert.Equal(t, domain.GradeBPlus, res.Grade)
	require.NotNil(t, res.Dimensions.Pacing)
	assert.Equal(t, 7.0, *res.Dimensions.Pacing)
	require.NotNil(t, res.Features)
	assert.True(t, res.Features.HasQuantifiedResult)
	te.client.AssertExpectations(t)
}

func TestEvaluate_PromptCarriesQuestionAndFeatures(t *testing.T) {
	te := newTestEvaluator(t)
	req := behavioralRequest()
	req.Context = "Senior backend role"
	te.client.On("ChatJSON", mock.Anything, mock.Anything, mock.MatchedBy(func(user string) bool {
		return strings.Contains(user, req.Question) &&
			strings.Contains(user, "CONTEXT: Senior backend role") &&
			strings.Contains(user, "STAR coverage=")
	}), 1000).Return(validEvaluationReply, nil).Once()

	_, err := te.Evaluate(context.Background(), req)
	require.NoError(t, err)
	te.client.AssertExpectations(t)
}

func TestEvaluate_CacheHitSkipsModel(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()

	first, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	second, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, te.cache.len())
	te.client.AssertNumberOfCalls(t, "ChatJSON", 1)
}

func TestEvaluate_InvalidCachedReplyIsRefetched(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()
	_, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)

	for k := range te.cache.data {
		te.cache.data[k] = "garbage"
	}
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()
	res, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAI, res.Source)
	te.client.AssertNumberOfCalls(t, "ChatJSON", 2)
}

func TestEvaluate_FallsBackWithoutRetry(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"malformed", "no json here, just prose"},
		{"refusal", "I'm sorry, I can't help with that request."},
		{"schema violation", `{"overall_score": 150}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEvaluator(t)
			te.client.On("ChatJSON", any4...).Return(tt.reply, nil)

			res, err := te.Evaluate(context.Background(), behavioralRequest())
			require.NoError(t, err)
			assert.Equal(t, domain.SourceLocal, res.Source)
			assert.Greater(t, res.OverallScore, 0.0)
			assert.Zero(t, te.cache.len())
			te.client.AssertNumberOfCalls(t, "ChatJSON", 1)
		})
	}
}

func TestEvaluate_TransportFailureRetriedThenFallsBack(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return("", fmt.Errorf("wrap: %w", domain.ErrUpstreamUnavailable))

	res, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Zero(t, te.cache.len())
	te.client.AssertNumberOfCalls(t, "ChatJSON", 3)
}

func TestEvaluate_RecoversOnRetry(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return("", domain.ErrUpstreamRateLimit).Once()
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()

	res, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAI, res.Source)
	te.client.AssertNumberOfCalls(t, "ChatJSON", 2)
}

func TestEvaluate_TimeoutReturnsLocal(t *testing.T) {
	te := newTestEvaluator(t, withTimeout(20*time.Millisecond))
	te.client.On("ChatJSON", any4...).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return("", context.DeadlineExceeded)

	start := time.Now()
	res, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEvaluate_OpenCircuitShortCircuits(t *testing.T) {
	te := newTestEvaluator(t, withBreaker(3))
	te.client.On("ChatJSON", any4...).Return("", domain.ErrUpstreamTimeout)

	res, err := te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	te.client.AssertNumberOfCalls(t, "ChatJSON", 3)

	res, err = te.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	te.client.AssertNumberOfCalls(t, "ChatJSON", 3)
}

func TestEvaluate_TooShortNeverCallsModel(t *testing.T) {
	te := newTestEvaluator(t)

	res, err := te.Evaluate(context.Background(), domain.EvaluateRequest{Answer: "um ok"})
	require.NoError(t, err)
	assert.True(t, res.TooShort)
	assert.Zero(t, res.OverallScore)
	te.client.AssertNotCalled(t, "ChatJSON", any4...)
}

func TestEvaluate_WithoutProviderIsLocal(t *testing.T) {
	e := NewEvaluator(EvaluatorDeps{Scorer: scoring.NewScorer(config.DefaultScoring())}, EvaluatorOptions{})
	assert.False(t, e.AIEnabled())

	res, err := e.Evaluate(context.Background(), behavioralRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.GreaterOrEqual(t, res.OverallScore, 50.0)
}

func TestEvaluate_LongInputStillScored(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", mock.Anything, mock.Anything, mock.MatchedBy(func(user string) bool {
		return !strings.Contains(user, strings.Repeat("q", maxQuestionRunes+1))
	}), 1000).Return(validEvaluationReply, nil).Once()

	req := behavioralRequest()
	req.Question = strings.Repeat("q", maxQuestionRunes+500)
	req.Answer = strings.Repeat(starAnswer+" ", 150)
	require.Greater(t, len([]rune(req.Answer)), 20000)

	res, err := te.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAI, res.Source)
	assert.Equal(t, 78.0, res.OverallScore)
	te.client.AssertExpectations(t)
}

func TestEvaluate_LongInputFallsBackLocally(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return("", domain.ErrMalformedResponse)

	req := behavioralRequest()
	req.Answer = strings.Repeat(starAnswer+" ", 150)

	res, err := te.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Greater(t, res.OverallScore, 0.0)
}

func TestEvaluate_ConcurrentIdenticalCallsShareOneModelCall(t *testing.T) {
	te := newTestEvaluator(t)
	release := make(chan struct{})
	te.client.On("ChatJSON", any4...).Run(func(mock.Arguments) { <-release }).Return(validEvaluationReply, nil)

	var wg sync.WaitGroup
	results := make([]domain.EvaluationResult, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = te.Evaluate(context.Background(), behavioralRequest())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, domain.SourceAI, r.Source)
	}
	te.client.AssertNumberOfCalls(t, "ChatJSON", 1)
}

func TestEvaluate_CanceledCallerDoesNotFailSharedCall(t *testing.T) {
	te := newTestEvaluator(t)
	started := make(chan struct{})
	release := make(chan struct{})
	te.client.On("ChatJSON", any4...).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(validEvaluationReply, nil).Once()

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan domain.EvaluationResult, 1)
	go func() {
		r, _ := te.Evaluate(ctxA, behavioralRequest())
		resA <- r
	}()
	<-started

	resB := make(chan domain.EvaluationResult, 1)
	go func() {
		r, _ := te.Evaluate(context.Background(), behavioralRequest())
		resB <- r
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.Equal(t, domain.SourceLocal, (<-resA).Source)

	close(release)
	assert.Equal(t, domain.SourceAI, (<-resB).Source)
	te.client.AssertNumberOfCalls(t, "ChatJSON", 1)
	assert.Equal(t, 1, te.cache.len())
}

func TestEvaluate_CanceledProbeKeepsCircuitHalfOpen(t *testing.T) {
	te := newTestEvaluator(t, withBreakerRecovery(1, 10*time.Millisecond))
	te.client.On("ChatJSON", any4...).Return("", domain.ErrUpstreamUnavailable).Once()
	te.client.On("ChatJSON", any4...).Return("", context.Canceled).Once()
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()

	res, _ := te.Evaluate(context.Background(), behavioralRequest())
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Equal(t, ai.CircuitOpen, te.breaker.State())

	time.Sleep(20 * time.Millisecond)
	res, _ = te.Evaluate(context.Background(), behavioralRequest())
	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.Equal(t, ai.CircuitHalfOpen, te.breaker.State())

	res, _ = te.Evaluate(context.Background(), behavioralRequest())
	assert.Equal(t, domain.SourceAI, res.Source)
	assert.Equal(t, ai.CircuitClosed, te.breaker.State())
	te.client.AssertExpectations(t)
}

func TestEvaluate_RejectedCallKeepsFailureStreak(t *testing.T) {
	te := newTestEvaluator(t, withBreaker(2))
	te.client.On("ChatJSON", any4...).Return("", domain.ErrUpstreamUnavailable).Once()
	te.client.On("ChatJSON", any4...).Return("", domain.ErrInvalidArgument).Once()
	te.client.On("ChatJSON", any4...).Return("", domain.ErrUpstreamUnavailable).Once()

	_, _ = te.Evaluate(context.Background(), behavioralRequest())
	assert.Equal(t, ai.CircuitClosed, te.breaker.State())

	_, _ = te.Evaluate(context.Background(), behavioralRequest())
	assert.Equal(t, ai.CircuitOpen, te.breaker.State())
	te.client.AssertNumberOfCalls(t, "ChatJSON", 3)
}

func TestEvaluateAsync(t *testing.T) {
	te := newTestEvaluator(t)
	te.client.On("ChatJSON", any4...).Return(validEvaluationReply, nil).Once()

	ch, err := te.EvaluateAsync(context.Background(), behavioralRequest())
	require.NoError(t, err)
	out, ok := <-ch
	require.True(t, ok)
	require.NoError(t, out.Err)
	assert.Equal(t, domain.SourceAI, out.Result.Source)
	_, ok = <-ch
	assert.False(t, ok)
}

func TestEvaluateAsync_CanceledWhilePoolFull(t *testing.T) {
	te := newTestEvaluator(t)
	require.NoError(t, te.sem.Acquire(context.Background(), 2))
	defer te.sem.Release(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := te.EvaluateAsync(ctx, behavioralRequest())
	require.ErrorIs(t, err, context.Canceled)
}

func TestScoreSegment(t *testing.T) {
	te := newTestEvaluator(t)
	res := te.ScoreSegment("so um I think we should like shard the database by user id", 2)
	assert.Equal(t, 2, res.Minute)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 100.0)
}

func TestFallbackReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("x: %w", domain.ErrUpstreamTimeout), "timeout"},
		{context.Canceled, "canceled"},
		{domain.ErrCircuitOpen, "circuit_open"},
		{domain.ErrRefusal, "refusal"},
		{domain.ErrMalformedResponse, "malformed"},
		{domain.ErrSchemaInvalid, "schema"},
		{domain.ErrUpstreamRateLimit, "rate_limit"},
		{domain.ErrUpstreamUnavailable, "unavailable"},
		{domain.ErrInvalidArgument, "invalid_request"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fallbackReason(tt.err), tt.err.Error())
	}
}
