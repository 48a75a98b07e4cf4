// Package nlp extracts lexical features from free-text answers: filler words,
// power words, STAR coverage, and readability. Every function is pure and
// returns zero values for empty input.
package nlp

import (
	"sort"
	"strings"

	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/pkg/numx"
	"github.com/fairyhunter13/interview-engine/pkg/textx"
)

// DetectFillers counts whole-word filler occurrences, sorted by severity×count
// descending with ties kept in taxonomy order.
func DetectFillers(text string) []domain.FillerHit {
	lower := strings.ToLower(text)
	hits := make([]domain.FillerHit, 0)
	if strings.TrimSpace(lower) == "" {
		return hits
	}
	for _, t := range fillerTerms {
		n := len(t.re.FindAllStringIndex(lower, -1))
		if n == 0 {
			continue
		}
		hits = append(hits, domain.FillerHit{Word: t.word, Count: n, Severity: t.severity, Category: t.category})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Severity*hits[i].Count > hits[j].Severity*hits[j].Count
	})
	return hits
}

// DetectPowerWords returns matched power words per category. A word is
// attributed to the first category that lists it.
func DetectPowerWords(text string) domain.PowerWordMatch {
	lower := strings.ToLower(text)
	out := domain.PowerWordMatch{}
	seen := map[string]struct{}{}
	for _, c := range powerCategories {
		for _, t := range powerTerms[c.name] {
			if _, dup := seen[t.word]; dup {
				continue
			}
			if t.re.MatchString(lower) {
				out[c.name] = append(out[c.name], t.word)
				seen[t.word] = struct{}{}
			}
		}
	}
	return out
}

// DetectStar reports which STAR components have at least one trigger phrase.
func DetectStar(text string) domain.StarCoverage {
	lower := strings.ToLower(text)
	return domain.StarCoverage{
		Situation: containsAny(lower, starSituation),
		Task:      containsAny(lower, starTask),
		Action:    containsAny(lower, starAction),
		Result:    containsAny(lower, starResult),
	}
}

// ComputeReadability derives word/sentence statistics and a Flesch reading
// ease clamped to [0,100].
func ComputeReadability(text string) domain.ReadabilityStats {
	words := textx.Words(text)
	wc := len(words)
	if wc == 0 {
		return domain.ReadabilityStats{SentenceCount: 1, ReadingLevel: ReadingLevel(0)}
	}
	sc := len(textx.Sentences(text))
	if sc < 1 {
		sc = 1
	}
	syllables := 0
	for _, w := range words {
		syllables += CountSyllables(w)
	}
	avgSentence := float64(wc) / float64(sc)
	avgSyllables := float64(syllables) / float64(wc)
	flesch := numx.Clamp(206.835-1.015*avgSentence-84.6*avgSyllables, 0, 100)
	return domain.ReadabilityStats{
		WordCount:           wc,
		SentenceCount:       sc,
		AvgSentenceLength:   numx.Round(avgSentence, 1),
		AvgSyllablesPerWord: numx.Round(avgSyllables, 2),
		FleschEase:          numx.Round(flesch, 1),
		ReadingLevel:        ReadingLevel(flesch),
	}
}

// CountSyllables approximates syllables by counting vowel runs. Words of three
// letters or fewer count as one; a trailing silent "e" is dropped; minimum one.
func CountSyllables(word string) int {
	w := strings.Trim(strings.ToLower(word), ".,!?;:")
	if len(w) <= 3 {
		return 1
	}
	n := len(vowelRunRe.FindAllStringIndex(w, -1))
	if strings.HasSuffix(w, "e") {
		n--
	}
	if n < 1 {
		return 1
	}
	return n
}

// ReadingLevel maps a Flesch reading ease to a band label.
func ReadingLevel(flesch float64) string {
	switch {
	case flesch >= 70:
		return "Easy (conversational)"
	case flesch >= 50:
		return "Standard (professional)"
	case flesch >= 30:
		return "Fairly difficult"
	}
	return "Complex"
}

// HasQuantifiedResult reports whether text contains a number with a unit of impact.
func HasQuantifiedResult(text string) bool {
	return quantifiedRe.MatchString(strings.ToLower(text))
}

// HasSpecifics reports whether text contains an explicit example phrase.
func HasSpecifics(text string) bool {
	return specificsRe.MatchString(strings.ToLower(text))
}

// Extract computes every lexical feature of text in one pass.
func Extract(text string) domain.LexicalFeatures {
	lower := strings.ToLower(text)
	words := textx.Words(lower)

	fillers := DetectFillers(text)
	var total, vocal int
	for _, f := range fillers {
		total += f.Count
		if f.Category == domain.FillerVocal {
			vocal += f.Count
		}
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	var opener bool
	if len(words) > 0 {
		_, opener = confidentOpeners[words[0]]
	}

	return domain.LexicalFeatures{
		Fillers:             fillers,
		FillerCount:         total,
		VocalFillerCount:    vocal,
		PowerWords:          DetectPowerWords(text),
		Star:                DetectStar(text),
		Readability:         ComputeReadability(text),
		HasQuantifiedResult: HasQuantifiedResult(text),
		HasSpecifics:        HasSpecifics(text),
		UniqueWordRatio:     numx.Ratio(float64(len(unique)), float64(len(words))),
		PositiveTerms:       countPresent(lower, positiveTerms),
		NegativeTerms:       countPresent(lower, negativeTerms),
		Exclamations:        strings.Count(text, "!"),
		ConfidentOpener:     opener,
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// countPresent counts how many terms occur at least once.
func countPresent(s string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(s, t) {
			n++
		}
	}
	return n
}
