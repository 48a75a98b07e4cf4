// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	// strip control chars outside tab/newline/carriage return
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Words splits s on whitespace.
func Words(s string) []string { return strings.Fields(s) }

// Sentences splits s on terminal punctuation (.!?) and drops empty pieces.
func Sentences(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// VisibleLen counts the runes left after trimming surrounding whitespace.
func VisibleLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
