// Package tokencount counts and budgets prompt tokens with tiktoken-go.
//
// Encodings are loaded from the embedded offline BPE files, so counting
// never reaches the network. Non-OpenAI models are approximated with
// cl100k_base, which is close enough for budgeting and usage metrics.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

const fallbackEncoding = "cl100k_base"

// TokenUsage represents token counts for one model call.
type TokenUsage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// Counter provides thread-safe token counting. Encodings are cached per model family.
type Counter struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

func NewCounter() *Counter {
	return &Counter{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is shared by the provider clients.
var DefaultCounter = NewCounter()

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	name := normalizeModelName(model)

	c.mu.RLock()
	enc, ok := c.encodings[name]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodings[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding", slog.String("model", model), slog.Any("error", err))
		if enc, err = tiktoken.GetEncoding(fallbackEncoding); err != nil {
			return nil, err
		}
	}
	c.encodings[name] = enc
	return enc, nil
}

// normalizeModelName maps provider model IDs ("openai/gpt-4o-mini",
// "gemini-2.5-flash", "meta-llama/...:free") to a tiktoken model name.
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(model, "/"); i != -1 {
		model = model[i+1:]
	}
	model = strings.TrimSuffix(model, ":free")
	switch {
	case strings.HasPrefix(model, "gpt-4o"):
		return "gpt-4o"
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	default:
		return "gpt-4"
	}
}

// CountTokens counts the tokens of text under model's encoding.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountChatTokens counts a system+user exchange including per-message overhead.
func (c *Counter) CountChatTokens(systemPrompt, userPrompt, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	const perMessage = 4 // <|start|>role<|message|>...<|end|>
	n := 3               // reply priming
	for _, m := range []string{systemPrompt, userPrompt} {
		n += perMessage + len(enc.Encode(m, nil, nil))
	}
	return n, nil
}

// TrimToBudget cuts text to at most budget tokens. A budget <= 0 leaves text untouched.
func (c *Counter) TrimToBudget(text, model string, budget int) (string, bool) {
	if budget <= 0 || text == "" {
		return text, false
	}
	enc, err := c.encoding(model)
	if err != nil {
		// rough guard: ~4 chars per token
		if limit := budget * 4; len(text) > limit {
			return text[:limit], true
		}
		return text, false
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text, false
	}
	return enc.Decode(tokens[:budget]), true
}

// CalculateUsage estimates usage of one call, falling back to ~4 chars per
// token when an encoding is unavailable.
func (c *Counter) CalculateUsage(systemPrompt, userPrompt, completion, model, provider string) TokenUsage {
	prompt, err := c.CountChatTokens(systemPrompt, userPrompt, model)
	if err != nil {
		prompt = (len(systemPrompt) + len(userPrompt)) / 4
	}
	out, err := c.CountTokens(completion, model)
	if err != nil {
		out = len(completion) / 4
	}
	return TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: out,
		TotalTokens:      prompt + out,
		Model:            model,
		Provider:         provider,
	}
}
