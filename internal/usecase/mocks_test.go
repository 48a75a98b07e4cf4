package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/scoring"
)

const starAnswer = "I led a team of 5 engineers and increased deployment frequency by 40% over 3 months, " +
	"reducing incident count significantly. For example, we automated testing."

const validEvaluationReply = "```json\n" + `{
  "overall_score": 78,
  "dimension_scores": {
    "relevance": 8, "star_structure": 7, "clarity": 8, "tone": 7,
    "depth": 8, "specificity": 7, "vocabulary": 8, "impact_results": 9,
    "filler_control": 9, "pacing": 7, "conciseness": 6, "enthusiasm": 7
  },
  "feedback": {"strengths": ["Clear result"], "improvements": ["Add context"], "summary": "Solid."},
  "star_analysis": {"situation": "ok", "task": "ok", "action": "good", "result": "great"}
}` + "\n```"

type mockAIClient struct{ mock.Mock }

func (m *mockAIClient) ChatJSON(ctx context.Context, system, user string, maxTokens int) (string, error) {
	args := m.Called(ctx, system, user, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *mockAIClient) Provider() string { return "fake" }

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

type testEvaluator struct {
	*Evaluator
	client *mockAIClient
	cache  *memCache
}

type evaluatorOption func(*EvaluatorDeps, *EvaluatorOptions)

func withBreaker(threshold int) evaluatorOption {
	return func(d *EvaluatorDeps, _ *EvaluatorOptions) {
		d.Breaker = ai.NewBreaker("test", threshold, time.Hour)
	}
}

func withBreakerRecovery(threshold int, recovery time.Duration) evaluatorOption {
	return func(d *EvaluatorDeps, _ *EvaluatorOptions) {
		d.Breaker = ai.NewBreaker("test", threshold, recovery)
	}
}

func withTimeout(d time.Duration) evaluatorOption {
	return func(_ *EvaluatorDeps, o *EvaluatorOptions) { o.Timeout = d }
}

func newTestEvaluator(t *testing.T, opts ...evaluatorOption) testEvaluator {
	t.Helper()
	v, err := ai.NewResponseValidator()
	require.NoError(t, err)
	client := &mockAIClient{}
	cache := newMemCache()
	deps := EvaluatorDeps{
		AI:        client,
		Scorer:    scoring.NewScorer(config.DefaultScoring()),
		Validator: v,
		Cache:     ai.NewResponseCache(cache, "test:", time.Hour),
		Retry: ai.NewRetryPolicy(domain.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     2 * time.Millisecond,
			Multiplier:   2,
		}),
	}
	o := EvaluatorOptions{Model: "gpt-4o-mini", MaxTokens: 1000, Workers: 2}
	for _, opt := range opts {
		opt(&deps, &o)
	}
	return testEvaluator{Evaluator: NewEvaluator(deps, o), client: client, cache: cache}
}

type fakeHistory struct {
	days     []time.Time
	avg      float64
	sessions int
	solved   int
	ats      float64
	atsErr   error
	mocks    int
	active   []string
	err      error
}

func (f *fakeHistory) PracticeDays(context.Context, string, time.Time) ([]time.Time, error) {
	return f.days, f.err
}

func (f *fakeHistory) AverageInterviewScore(context.Context, string) (float64, int, error) {
	return f.avg, f.sessions, nil
}

func (f *fakeHistory) DistinctSolvedProblems(context.Context, string) (int, error) {
	return f.solved, nil
}

func (f *fakeHistory) LatestATSScore(context.Context, string) (float64, error) {
	return f.ats, f.atsErr
}

func (f *fakeHistory) CompletedMockSessions(context.Context, string) (int, error) {
	return f.mocks, nil
}

func (f *fakeHistory) ActiveUsers(context.Context, time.Time) ([]string, error) {
	return f.active, nil
}

type fakeScores struct {
	mu      sync.Mutex
	stored  map[string]domain.ReadinessScore
	failFor map[string]bool
	upserts int
}

func newFakeScores() *fakeScores {
	return &fakeScores{stored: map[string]domain.ReadinessScore{}, failFor: map[string]bool{}}
}

func (f *fakeScores) Upsert(_ context.Context, s domain.ReadinessScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[s.UserID] {
		return domain.ErrInternal
	}
	f.stored[s.UserID] = s
	f.upserts++
	return nil
}

func (f *fakeScores) Get(_ context.Context, userID string) (domain.ReadinessScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stored[userID]
	if !ok {
		return domain.ReadinessScore{}, domain.ErrNotFound
	}
	return s, nil
}

type fakePractice struct {
	sessions []domain.InterviewSession
	scans    []domain.ResumeScan
	dsa      []domain.DSASubmission
	err      error
}

func (f *fakePractice) RecordSession(_ context.Context, s domain.InterviewSession) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sessions = append(f.sessions, s)
	return "sess-1", nil
}

func (f *fakePractice) RecordResumeScan(_ context.Context, s domain.ResumeScan) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.scans = append(f.scans, s)
	return "scan-1", nil
}

func (f *fakePractice) RecordDSASubmission(_ context.Context, s domain.DSASubmission) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.dsa = append(f.dsa, s)
	return "dsa-1", nil
}
