package nlp

import (
	"regexp"
)

type fillerTier struct {
	severity int
	category string
	words    []string
}

// Filler tiers, mildest first. Iteration order is also the tie-break order.
var fillerTiers = []fillerTier{
	{severity: 1, category: "verbal", words: []string{"like", "you know", "so", "well", "okay", "right"}},
	{severity: 2, category: "verbal", words: []string{"basically", "literally", "honestly", "actually", "i mean", "sort of", "kind of", "anyway"}},
	{severity: 3, category: "vocal", words: []string{"uhm", "um", "uh", "hmm", "er", "ah", "emm"}},
}

type powerCategory struct {
	name  string
	words []string
}

// Power-word categories in match-priority order.
var powerCategories = []powerCategory{
	{name: "leadership", words: []string{"led", "managed", "directed", "spearheaded", "mentored", "guided", "oversaw"}},
	{name: "achievement", words: []string{"achieved", "delivered", "exceeded", "launched", "completed", "won", "secured"}},
	{name: "technical", words: []string{"designed", "architected", "implemented", "built", "developed", "optimized", "refactored"}},
	{name: "collaboration", words: []string{"collaborated", "partnered", "coordinated", "aligned", "liaised", "facilitated"}},
	{name: "impact", words: []string{"improved", "increased", "reduced", "accelerated", "doubled", "scaled", "saved"}},
}

// STAR trigger phrases; a component is covered when any phrase occurs as a substring.
var (
	starSituation = []string{"situation", "context", "background", "when i was", "at my previous", "in my role"}
	starTask      = []string{"task", "responsibility", "challenge", "goal", "objective", "assigned to"}
	starAction    = []string{"action", "i decided", "i implemented", "i built", "i led", "i worked", "i created", "i resolved"}
	starResult    = []string{"result", "outcome", "achieved", "reduced by", "increased by", "improved by", "learned", "% ", "percent"}
)

// Tone lexicons, matched as substrings.
var (
	positiveTerms = []string{"happy", "proud", "excited", "passionate", "enjoy", "love", "great", "excellent",
		"succeeded", "thrilled", "grateful", "motivated", "achieved", "delivered"}
	negativeTerms = []string{"failed", "bad", "terrible", "worst", "hate", "difficult", "impossible", "struggle"}
)

var confidentOpeners = map[string]struct{}{
	"i": {}, "we": {}, "our": {}, "my": {}, "at": {}, "when": {},
}

var (
	quantifiedRe = regexp.MustCompile(`\d+\s*(%|percent|x\b|times|users|hours|days|weeks|months)`)
	specificsRe  = regexp.MustCompile(`for example|specifically|in particular|such as|including`)
	vowelRunRe   = regexp.MustCompile(`[aeiou]+`)
)

type compiledTerm struct {
	word     string
	severity int
	category string
	re       *regexp.Regexp
}

var (
	fillerTerms []compiledTerm
	powerTerms  map[string][]compiledTerm
)

func wholeWord(w string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
}

func init() {
	for _, tier := range fillerTiers {
		for _, w := range tier.words {
			fillerTerms = append(fillerTerms, compiledTerm{word: w, severity: tier.severity, category: tier.category, re: wholeWord(w)})
		}
	}
	powerTerms = make(map[string][]compiledTerm, len(powerCategories))
	for _, c := range powerCategories {
		for _, w := range c.words {
			powerTerms[c.name] = append(powerTerms[c.name], compiledTerm{word: w, re: wholeWord(w)})
		}
	}
}
