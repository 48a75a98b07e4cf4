package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// ExtractJSON pulls the JSON document out of a model reply. A ```json fence
// wins over a bare ``` fence; when the fenced (or whole) text does not parse,
// the span from the first '{' to the last '}' is tried instead.
func ExtractJSON(text string) (string, error) {
	candidate := strings.TrimSpace(text)
	if inner, ok := fenced(candidate, "```json"); ok {
		candidate = inner
	} else if inner, ok := fenced(candidate, "```"); ok {
		candidate = inner
	}
	if candidate != "" && json.Valid([]byte(candidate)) {
		return candidate, nil
	}
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start != -1 && end > start {
		span := candidate[start : end+1]
		if json.Valid([]byte(span)) {
			return span, nil
		}
	}
	return "", fmt.Errorf("op=ai.ExtractJSON: %w: no valid JSON found in model response", domain.ErrMalformedResponse)
}

// fenced returns the text between the first occurrence of open and the next
// ``` marker (or the end of text when the fence is left unclosed).
func fenced(text, open string) (string, bool) {
	i := strings.Index(text, open)
	if i == -1 {
		return "", false
	}
	rest := text[i+len(open):]
	if j := strings.Index(rest, "```"); j != -1 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest), true
}
