package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrUpstreamTimeout", ErrUpstreamTimeout, "upstream timeout"},
		{"ErrUpstreamRateLimit", ErrUpstreamRateLimit, "upstream rate limit"},
		{"ErrSchemaInvalid", ErrSchemaInvalid, "schema invalid"},
		{"ErrMalformedResponse", ErrMalformedResponse, "malformed response"},
		{"ErrRefusal", ErrRefusal, "model refusal"},
		{"ErrCircuitOpen", ErrCircuitOpen, "circuit open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.err.Error())
			}
		})
	}
}

func TestQuestionType_PrefersShortAnswer(t *testing.T) {
	assert.True(t, QuestionType("").PrefersShortAnswer())
	assert.True(t, QuestionHR.PrefersShortAnswer())
	assert.True(t, QuestionBehavioral.PrefersShortAnswer())
	assert.False(t, QuestionTechnical.PrefersShortAnswer())
	assert.False(t, QuestionSystemDesign.PrefersShortAnswer())
}

func TestDimensionTitle(t *testing.T) {
	assert.Equal(t, "Star Structure", DimStarStructure.Title())
	assert.Equal(t, "Relevance", DimRelevance.Title())
	assert.Equal(t, "Impact Results", DimImpactResults.Title())
}

func TestDimensionScores_GetAndJSON(t *testing.T) {
	p := 7.5
	s := DimensionScores{Relevance: 4, Clarity: 6, Pacing: &p}

	v, ok := s.Get(DimClarity)
	assert.True(t, ok)
	assert.Equal(t, 6.0, v)

	_, ok = s.Get(DimSpecificity)
	assert.False(t, ok, "unset AI-only dimension reports missing")

	v, ok = s.Get(DimPacing)
	assert.True(t, ok)
	assert.Equal(t, 7.5, v)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"pacing":7.5`)
	assert.NotContains(t, string(b), "specificity")
}

func TestStarCoverageAndPowerWords(t *testing.T) {
	assert.Equal(t, 2, StarCoverage{Action: true, Result: true}.Filled())
	pw := PowerWordMatch{"leadership": {"led"}, "impact": {}, "technical": {"built", "designed"}}
	assert.Equal(t, 2, pw.Categories())
}

func TestEvaluationResult_Radar(t *testing.T) {
	r := EvaluationResult{Dimensions: DimensionScores{Relevance: 4.7, Enthusiasm: 6.8}}
	radar := r.Radar()
	require.Len(t, radar, len(LocalDimensions))
	assert.Equal(t, RadarPoint{Name: "Relevance", Score: 4.7}, radar[0])
	assert.Equal(t, RadarPoint{Name: "Enthusiasm", Score: 6.8}, radar[7])
}
