// Package real implements domain.AIClient against any OpenAI-compatible
// chat completions endpoint (OpenAI, OpenRouter, local gateways).
package real

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/interview-engine/internal/adapter/observability"
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

const provider = config.ProviderOpenAI

// Client sends one chat completion per ChatJSON call. Retries, caching and
// circuit breaking live in the orchestrator.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	referer     string
	title       string
	temperature float64
	hc          *http.Client
	counter     *tokencount.Counter
}

// New builds a client whose transport emits otel spans per request.
func New(cfg config.Config) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "ai.chat " + r.URL.Path
		}),
	)
	return &Client{
		apiKey:      cfg.OpenAIAPIKey,
		baseURL:     strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:       cfg.OpenAIModel,
		referer:     cfg.OpenAIReferer,
		title:       cfg.OpenAITitle,
		temperature: cfg.AITemperature,
		hc:          &http.Client{Timeout: cfg.AIChatTimeout, Transport: transport},
		counter:     tokencount.DefaultCounter,
	}
}

// Provider implements domain.ProviderNamer.
func (c *Client) Provider() string { return provider }

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ChatJSON implements domain.AIClient.
func (c *Client) ChatJSON(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("op=real.ChatJSON: %w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("op=real.ChatJSON: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("op=real.ChatJSON: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.AIRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(provider, "error").Inc()
		return "", fmt.Errorf("op=real.ChatJSON: %w", classifyTransportErr(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(provider, "error").Inc()
		return "", fmt.Errorf("op=real.ChatJSON: read body: %w", errors.Join(domain.ErrUpstreamUnavailable, err))
	}
	observability.AIRequestsTotal.WithLabelValues(provider, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if err := statusError(resp.StatusCode); err != nil {
		slog.Warn("ai provider non-2xx",
			slog.String("provider", provider),
			slog.String("model", c.model),
			slog.Int("status", resp.StatusCode),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", snippet(raw, 512)))
		return "", fmt.Errorf("op=real.ChatJSON: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("op=real.ChatJSON: %w: %v", domain.ErrMalformedResponse, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("op=real.ChatJSON: %w: empty choices", domain.ErrMalformedResponse)
	}
	content := out.Choices[0].Message.Content

	if out.Usage != nil {
		observability.RecordTokens(provider, out.Usage.PromptTokens, out.Usage.CompletionTokens)
	} else {
		u := c.counter.CalculateUsage(systemPrompt, userPrompt, content, c.model, provider)
		observability.RecordTokens(provider, u.PromptTokens, u.CompletionTokens)
	}
	if out.Model != "" && out.Model != c.model {
		slog.Debug("model substitution detected",
			slog.String("requested_model", c.model),
			slog.String("actual_model", out.Model))
	}
	return content, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamRateLimit, code)
	case code == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamTimeout, code)
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: authentication failed: status %d", domain.ErrInvalidArgument, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrInvalidArgument, code)
	}
}

func classifyTransportErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
