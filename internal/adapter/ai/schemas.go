package ai

// Kind names one prompt/schema pair served by the orchestrator.
type Kind string

const (
	KindEvaluation   Kind = "evaluation"
	KindResumeATS    Kind = "resume_ats"
	KindCodeReview   Kind = "code_review"
	KindStudyPlan    Kind = "study_plan"
	KindSystemDesign Kind = "system_design"
	KindBehavioral   Kind = "behavioral"
	KindCompanyPrep  Kind = "company_prep"
	KindQuestionGen  Kind = "question_gen"
)

// Kinds lists every supported kind.
var Kinds = []Kind{
	KindEvaluation, KindResumeATS, KindCodeReview, KindStudyPlan,
	KindSystemDesign, KindBehavioral, KindCompanyPrep, KindQuestionGen,
}

func number(min, max float64) map[string]any {
	return map[string]any{"type": "number", "minimum": min, "maximum": max}
}

func text() map[string]any { return map[string]any{"type": "string"} }

func textList() map[string]any {
	return map[string]any{"type": "array", "items": text()}
}

func object(props map[string]any, required ...string) map[string]any {
	o := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func requireAll(props map[string]any) map[string]any {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	return object(props, keys...)
}

// schemaDocs holds the JSON schema of each kind, written against the
// normalised field names (see aliases).
var schemaDocs = map[Kind]map[string]any{
	KindEvaluation: requireAll(map[string]any{
		"overall_score": number(0, 100),
		"dimension_scores": requireAll(map[string]any{
			"relevance":      number(0, 10),
			"star_structure": number(0, 10),
			"clarity":        number(0, 10),
			"tone":           number(0, 10),
			"depth":          number(0, 10),
			"specificity":    number(0, 10),
			"vocabulary":     number(0, 10),
			"impact_results": number(0, 10),
			"filler_control": number(0, 10),
			"pacing":         number(0, 10),
			"conciseness":    number(0, 10),
			"enthusiasm":     number(0, 10),
		}),
		"feedback": requireAll(map[string]any{
			"strengths":    textList(),
			"improvements": textList(),
			"summary":      text(),
		}),
		"star_analysis": requireAll(map[string]any{
			"situation": text(),
			"task":      text(),
			"action":    text(),
			"result":    text(),
		}),
	}),
	KindResumeATS: requireAll(map[string]any{
		"ats_score":         number(0, 100),
		"matching_keywords": textList(),
		"missing_keywords":  textList(),
		"formatting_issues": textList(),
		"section_analysis": map[string]any{
			"type":                 "object",
			"additionalProperties": number(0, 10),
		},
		"suggestions": textList(),
		"summary":     text(),
	}),
	KindCodeReview: requireAll(map[string]any{
		"correctness":        number(0, 10),
		"time_complexity":    text(),
		"space_complexity":   text(),
		"bugs":               textList(),
		"edge_cases_missed":  textList(),
		"optimized_solution": text(),
		"explanation":        text(),
	}),
	KindStudyPlan: requireAll(map[string]any{
		"title": text(),
		"weekly_milestones": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": object(map[string]any{
				"week":           map[string]any{"type": "integer", "minimum": 1},
				"focus":          text(),
				"tasks":          textList(),
				"resource_links": textList(),
			}, "week", "focus", "tasks"),
		},
		"readiness_checkpoints": textList(),
	}),
	KindSystemDesign: requireAll(map[string]any{
		"overall_score":          number(0, 100),
		"scalability":            number(0, 10),
		"components":             number(0, 10),
		"tradeoffs":              number(0, 10),
		"missing_pieces":         textList(),
		"optimized_architecture": text(),
		"feedback":               text(),
	}),
	KindBehavioral: requireAll(map[string]any{
		"star_score":    number(0, 100),
		"clarity":       number(0, 10),
		"relevance":     number(0, 10),
		"feedback":      text(),
		"sample_answer": text(),
	}),
	KindCompanyPrep: requireAll(map[string]any{
		"interview_rounds": textList(),
		"core_values":      textList(),
		"key_focus_areas":  textList(),
		"common_questions": textList(),
		"insider_tips":     textList(),
	}),
	KindQuestionGen: requireAll(map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"q":    map[string]any{"type": "string", "minLength": 1},
				"hint": text(),
				"tag":  text(),
				"diff": text(),
			}, "q"),
		},
	}),
}

type alias struct{ from, to string }

type aliasGroup struct {
	path    string
	renames []alias
}

// aliases maps field names models commonly emit to the normalised names,
// per kind and per nesting path ("" is the document root). Groups and
// renames apply in order, so the first alias present for a field wins.
var aliases = map[Kind][]aliasGroup{
	KindEvaluation: {
		{"", []alias{
			{"dimensionScores", "dimension_scores"},
			{"dimension_score", "dimension_scores"},
			{"scores", "dimension_scores"},
			{"dimensions", "dimension_scores"},
			{"overallScore", "overall_score"},
			{"overall", "overall_score"},
			{"starAnalysis", "star_analysis"},
			{"star_breakdown", "star_analysis"},
		}},
		{"dimension_scores", []alias{
			{"star_method", "star_structure"},
			{"star", "star_structure"},
			{"impact_result", "impact_results"},
			{"impact", "impact_results"},
			{"tone_confidence", "tone"},
			{"confidence", "tone"},
			{"fillers", "filler_control"},
		}},
		{"feedback", []alias{
			{"ai_summary", "summary"},
			{"overall", "summary"},
		}},
	},
	KindResumeATS: {
		{"", []alias{{"atsScore", "ats_score"}, {"score", "ats_score"}}},
	},
	KindSystemDesign: {
		{"", []alias{{"score", "overall_score"}, {"trade_offs", "tradeoffs"}}},
	},
	KindBehavioral: {
		{"", []alias{{"score", "star_score"}}},
	},
}
