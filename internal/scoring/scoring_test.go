package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const ledTeam = "I led a team of 5 engineers and increased deployment frequency by 40% over 3 months, reducing incident count significantly. For example, we automated testing."

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	cfg := config.DefaultScoring()
	require.NoError(t, cfg.Validate())
	return NewScorer(cfg)
}

func TestScore_StrongBehavioralAnswer(t *testing.T) {
	s := newScorer(t)
	res := s.Score(ledTeam, domain.QuestionBehavioral)

	assert.Equal(t, domain.SourceLocal, res.Source)
	assert.False(t, res.TooShort)
	assert.Equal(t, domain.DimensionScores{
		Relevance:     4.7,
		StarStructure: 5.0,
		Clarity:       4.2,
		Tone:          6.0,
		Depth:         9.0,
		Vocabulary:    10.0,
		Conciseness:   5.0,
		Enthusiasm:    6.8,
	}, res.Dimensions)
	assert.InDelta(t, 62.7, res.OverallScore, 1e-9)
	assert.GreaterOrEqual(t, res.OverallScore, 50.0)
	assert.Equal(t, domain.GradeCPlus, res.Grade)
	assert.Zero(t, res.FillerPenalty)

	assert.Equal(t, []string{"Strong Vocabulary (10.0/10)", "Strong Depth (9.0/10)"}, res.Feedback.Strengths)
	assert.Equal(t, []string{ImprovementTip(domain.DimClarity), ImprovementTip(domain.DimRelevance)}, res.Feedback.Improvements)
	assert.Contains(t, res.Feedback.Summary, "62.7/100")

	require.NotNil(t, res.Features)
	assert.True(t, res.Features.Star.Action)
	assert.True(t, res.Features.Star.Result)
	assert.Nil(t, res.Dimensions.Specificity)
}

func TestScore_TechnicalPrefersLongerAnswers(t *testing.T) {
	s := newScorer(t)
	short := s.Score(ledTeam, domain.QuestionHR)
	long := s.Score(ledTeam, domain.QuestionTechnical)
	assert.Less(t, long.Dimensions.Conciseness, short.Dimensions.Conciseness)
}

func TestScore_FillersLowerClarity(t *testing.T) {
	s := newScorer(t)
	filled := s.Score(strings.Repeat("um, like, you know, uhm. ", 10), domain.QuestionBehavioral)
	clean := s.Score(strings.Repeat("we ship the code fast. ", 10), domain.QuestionBehavioral)

	assert.Equal(t, 6.0, filled.Dimensions.Clarity)
	assert.Equal(t, 4.0, filled.FillerPenalty)
	assert.Equal(t, 10.0, clean.Dimensions.Clarity)
	assert.Greater(t, clean.OverallScore, filled.OverallScore)
}

func TestScore_TooShort(t *testing.T) {
	s := newScorer(t)
	for _, in := range []string{"", "   ", "ok sure", "  123456789  "} {
		res := s.Score(in, domain.QuestionBehavioral)
		assert.True(t, res.TooShort, in)
		assert.Zero(t, res.OverallScore)
		assert.Equal(t, domain.GradeD, res.Grade)
		assert.Equal(t, TooShortMessage, res.Message)
		assert.Equal(t, domain.SourceLocal, res.Source)
	}
	assert.False(t, s.Score("1234567890", domain.QuestionBehavioral).TooShort)
}

func TestScore_BoundsHoldForLongInput(t *testing.T) {
	s := newScorer(t)
	res := s.Score(strings.Repeat("I achieved great results and delivered 50% faster releases! ", 200), domain.QuestionTechnical)
	assert.LessOrEqual(t, res.OverallScore, 100.0)
	assert.GreaterOrEqual(t, res.OverallScore, 0.0)
	for _, d := range domain.LocalDimensions {
		v, ok := res.Dimensions.Get(d)
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, 0.0, d)
		assert.LessOrEqual(t, v, 10.0, d)
	}
	assert.LessOrEqual(t, len(res.Feedback.Strengths), 3)
	assert.LessOrEqual(t, len(res.Feedback.Improvements), 3)
}

func TestScore_Deterministic(t *testing.T) {
	s := newScorer(t)
	assert.Equal(t, s.Score(ledTeam, ""), s.Score(ledTeam, ""))
}

func TestScore_CustomWeights(t *testing.T) {
	cfg := config.DefaultScoring()
	cfg.Weights = config.DimensionWeights{Depth: 1}
	require.NoError(t, cfg.Validate())
	res := NewScorer(cfg).Score(ledTeam, domain.QuestionBehavioral)
	assert.InDelta(t, 90.0, res.OverallScore, 1e-9)
	assert.Equal(t, domain.GradeAPlus, res.Grade)
}

func TestGrade(t *testing.T) {
	s := newScorer(t)
	cases := map[float64]domain.Grade{
		100:  domain.GradeAPlus,
		88:   domain.GradeAPlus,
		87.9: domain.GradeA,
		80:   domain.GradeA,
		73:   domain.GradeBPlus,
		65:   domain.GradeB,
		55:   domain.GradeCPlus,
		45:   domain.GradeC,
		44.9: domain.GradeD,
		0:    domain.GradeD,
	}
	for score, want := range cases {
		assert.Equal(t, want, s.Grade(score), score)
	}
}

func TestImprovementTip_Unknown(t *testing.T) {
	assert.Equal(t, "Improve Pacing", ImprovementTip(domain.DimPacing))
}
