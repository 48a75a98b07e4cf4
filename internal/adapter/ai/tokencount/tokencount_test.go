package tokencount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	t.Parallel()

	counter := NewCounter()

	tests := []struct {
		name     string
		text     string
		model    string
		minCount int
		maxCount int
	}{
		{name: "gpt-4o-mini via openrouter id", text: "Hello, world!", model: "openai/gpt-4o-mini", minCount: 3, maxCount: 5},
		{name: "gpt-3.5", text: "The quick brown fox jumps over the lazy dog.", model: "gpt-3.5-turbo", minCount: 8, maxCount: 12},
		{name: "gemini approximated", text: "Tell me about a time you led a team.", model: "gemini-2.5-flash", minCount: 8, maxCount: 13},
		{name: "empty", text: "", model: "gpt-4", minCount: 0, maxCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := counter.CountTokens(tt.text, tt.model)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, tt.minCount)
			assert.LessOrEqual(t, count, tt.maxCount)
		})
	}
}

func TestNormalizeModelName(t *testing.T) {
	assert.Equal(t, "gpt-4o", normalizeModelName("openai/gpt-4o-mini"))
	assert.Equal(t, "gpt-3.5-turbo", normalizeModelName("GPT-3.5-Turbo"))
	assert.Equal(t, "gpt-4", normalizeModelName("meta-llama/llama-3.1-8b-instruct:free"))
	assert.Equal(t, "gpt-4", normalizeModelName("gemini-2.5-flash"))
}

func TestCountChatTokens_IncludesOverhead(t *testing.T) {
	t.Parallel()
	counter := NewCounter()

	sys, err := counter.CountTokens("You are a strict technical recruiter.", "gpt-4")
	require.NoError(t, err)
	usr, err := counter.CountTokens("Evaluate this answer.", "gpt-4")
	require.NoError(t, err)

	chat, err := counter.CountChatTokens("You are a strict technical recruiter.", "Evaluate this answer.", "gpt-4")
	require.NoError(t, err)
	assert.Equal(t, sys+usr+11, chat)
}

func TestTrimToBudget(t *testing.T) {
	t.Parallel()
	counter := NewCounter()
	long := strings.Repeat("I improved the deployment pipeline. ", 200)

	trimmed, cut := counter.TrimToBudget(long, "gpt-4", 50)
	assert.True(t, cut)
	n, err := counter.CountTokens(trimmed, "gpt-4")
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 50)
	assert.True(t, strings.HasPrefix(long, trimmed))

	same, cut := counter.TrimToBudget("short answer", "gpt-4", 50)
	assert.False(t, cut)
	assert.Equal(t, "short answer", same)

	same, cut = counter.TrimToBudget(long, "gpt-4", 0)
	assert.False(t, cut)
	assert.Equal(t, long, same)
}

func TestCalculateUsage(t *testing.T) {
	t.Parallel()
	usage := NewCounter().CalculateUsage("system", "user prompt", `{"overall_score": 70}`, "gpt-4", "openai")
	assert.Positive(t, usage.PromptTokens)
	assert.Positive(t, usage.CompletionTokens)
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
	assert.Equal(t, "openai", usage.Provider)
}
