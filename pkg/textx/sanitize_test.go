// Package textx contains tests for the text utilities.
package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestSentences_DropsEmptyPieces(t *testing.T) {
	got := Sentences("I led the team. We shipped!! Did it work?  ")
	assert.Equal(t, []string{"I led the team", "We shipped", "Did it work"}, got)
	assert.Empty(t, Sentences("   ...  "))
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Words("  a\tb\n c "))
	assert.Empty(t, Words(""))
}

func TestVisibleLenAndTruncate(t *testing.T) {
	assert.Equal(t, 5, VisibleLen("  hello \n"))
	assert.Equal(t, "hé", Truncate("héllo", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
