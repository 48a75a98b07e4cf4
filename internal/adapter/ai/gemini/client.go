// Package gemini implements domain.AIClient with the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const (
	provider     = config.ProviderGemini
	defaultModel = "gemini-2.5-flash"
)

// generator is the slice of genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models      generator
	model       string
	temperature float32
}

// New creates a client for the Gemini API backend.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("op=gemini.New: %w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	return newWithModels(client.Models, cfg.GeminiModel, cfg.AITemperature), nil
}

func newWithModels(models generator, model string, temperature float64) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{models: models, model: model, temperature: float32(temperature)}
}

func (c *Client) Provider() string { return provider }

func (c *Client) Model() string { return c.model }

// ChatJSON implements domain.AIClient. The system prompt travels as a
// system instruction and JSON output is requested through the MIME type.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", fmt.Errorf("op=gemini.ChatJSON: %w: empty prompt", domain.ErrInvalidArgument)
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.temperature),
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: "application/json",
	}
	if s := strings.TrimSpace(systemPrompt); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	observability.AIRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(provider, "error").Inc()
		return "", fmt.Errorf("op=gemini.ChatJSON: %w", classify(err))
	}
	observability.AIRequestsTotal.WithLabelValues(provider, "200").Inc()

	if resp != nil && resp.UsageMetadata != nil {
		observability.RecordTokens(provider, int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount))
	}

	var b strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil || strings.TrimSpace(part.Text) == "" {
					continue
				}
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString(part.Text)
			}
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("op=gemini.ChatJSON: %w: empty response", domain.ErrMalformedResponse)
	}
	return out, nil
}

// classify maps SDK errors onto the domain taxonomy.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
		case apiErr.Code == http.StatusGatewayTimeout, apiErr.Code == http.StatusRequestTimeout:
			return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		case apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: authentication failed: %v", domain.ErrInvalidArgument, err)
		case apiErr.Code >= 400:
			return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
	}
	msg := strings.ToUpper(err.Error())
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
	case strings.Contains(msg, "DEADLINE_EXCEEDED"):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	case strings.Contains(msg, "UNAVAILABLE"), strings.Contains(msg, "INTERNAL"):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}
