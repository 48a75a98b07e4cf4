package ai

import "strings"

var refusalIndicators = []string{
	"i'm sorry", "i am sorry", "i cannot", "i can't", "i'm unable", "i am unable",
	"i apologize", "i'm afraid", "i don't have access", "i won't be able",
	"against my guidelines", "content policy", "not able to help with",
}

// IsRefusal reports whether a reply without usable JSON reads like the model
// declined the request. Callers consult it only after ExtractJSON failed.
func IsRefusal(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range refusalIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
