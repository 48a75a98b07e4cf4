package domain

import "strings"

// QuestionType tags the interview question an answer responds to.
type QuestionType string

const (
	QuestionBehavioral   QuestionType = "Behavioral"
	QuestionHR           QuestionType = "HR"
	QuestionTechnical    QuestionType = "Technical"
	QuestionSystemDesign QuestionType = "System Design"
)

// PrefersShortAnswer reports whether answers to this question type are
// expected to be brief. An empty tag is treated as behavioral.
func (q QuestionType) PrefersShortAnswer() bool {
	switch q {
	case "", QuestionBehavioral, QuestionHR:
		return true
	}
	return false
}

// Filler categories
const (
	FillerVerbal = "verbal"
	FillerVocal  = "vocal"
)

// FillerHit is one filler word found in an answer.
// Invariants: Count >= 1; Severity in {1,2,3}; Category "vocal" iff Severity == 3.
type FillerHit struct {
	Word     string `json:"word"`
	Count    int    `json:"count"`
	Severity int    `json:"severity"`
	Category string `json:"category"`
}

// PowerWordMatch maps a power-word category to the words matched in it.
type PowerWordMatch map[string][]string

// Categories returns how many categories have at least one match.
func (p PowerWordMatch) Categories() int {
	n := 0
	for _, ws := range p {
		if len(ws) > 0 {
			n++
		}
	}
	return n
}

type StarCoverage struct {
	Situation bool `json:"situation"`
	Task      bool `json:"task"`
	Action    bool `json:"action"`
	Result    bool `json:"result"`
}

// Filled counts the covered STAR components.
func (s StarCoverage) Filled() int {
	n := 0
	for _, b := range []bool{s.Situation, s.Task, s.Action, s.Result} {
		if b {
			n++
		}
	}
	return n
}

type ReadabilityStats struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	AvgSyllablesPerWord float64 `json:"avg_syllables_per_word"`
	FleschEase          float64 `json:"flesch_ease"`
	ReadingLevel        string  `json:"reading_level"`
}

// LexicalFeatures bundles every signal the extractor derives from one text.
type LexicalFeatures struct {
	Fillers             []FillerHit      `json:"fillers"`
	FillerCount         int              `json:"filler_count"`
	VocalFillerCount    int              `json:"vocal_filler_count"`
	PowerWords          PowerWordMatch   `json:"power_words"`
	Star                StarCoverage     `json:"star_breakdown"`
	Readability         ReadabilityStats `json:"readability"`
	HasQuantifiedResult bool             `json:"has_quantified_result"`
	HasSpecifics        bool             `json:"has_specifics"`
	UniqueWordRatio     float64          `json:"unique_word_ratio"`
	PositiveTerms       int              `json:"positive_terms"`
	NegativeTerms       int              `json:"negative_terms"`
	Exclamations        int              `json:"exclamations"`
	ConfidentOpener     bool             `json:"confident_opener"`
}

// Dimension names a scored quality axis.
type Dimension string

const (
	DimRelevance     Dimension = "relevance"
	DimStarStructure Dimension = "star_structure"
	DimClarity       Dimension = "clarity"
	DimTone          Dimension = "tone"
	DimDepth         Dimension = "depth"
	DimVocabulary    Dimension = "vocabulary"
	DimConciseness   Dimension = "conciseness"
	DimEnthusiasm    Dimension = "enthusiasm"
	// AI-only
	DimSpecificity   Dimension = "specificity"
	DimImpactResults Dimension = "impact_results"
	DimFillerControl Dimension = "filler_control"
	DimPacing        Dimension = "pacing"
)

// LocalDimensions lists the dimensions the local scorer produces, in report order.
var LocalDimensions = []Dimension{
	DimRelevance, DimStarStructure, DimClarity, DimTone,
	DimDepth, DimVocabulary, DimConciseness, DimEnthusiasm,
}

// AIDimensions lists the dimensions only the model path fills in.
var AIDimensions = []Dimension{DimSpecificity, DimImpactResults, DimFillerControl, DimPacing}

// Title renders the dimension for humans, e.g. "Star Structure".
func (d Dimension) Title() string {
	parts := strings.Split(string(d), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// DimensionScores holds 0-10 scores. The AI-only dimensions are nil on the local path.
type DimensionScores struct {
	Relevance     float64  `json:"relevance"`
	StarStructure float64  `json:"star_structure"`
	Clarity       float64  `json:"clarity"`
	Tone          float64  `json:"tone"`
	Depth         float64  `json:"depth"`
	Vocabulary    float64  `json:"vocabulary"`
	Conciseness   float64  `json:"conciseness"`
	Enthusiasm    float64  `json:"enthusiasm"`
	Specificity   *float64 `json:"specificity,omitempty"`
	ImpactResults *float64 `json:"impact_results,omitempty"`
	FillerControl *float64 `json:"filler_control,omitempty"`
	Pacing        *float64 `json:"pacing,omitempty"`
}

// Get returns the score for d; ok is false for unknown or unset dimensions.
func (s DimensionScores) Get(d Dimension) (float64, bool) {
	switch d {
	case DimRelevance:
		return s.Relevance, true
	case DimStarStructure:
		return s.StarStructure, true
	case DimClarity:
		return s.Clarity, true
	case DimTone:
		return s.Tone, true
	case DimDepth:
		return s.Depth, true
	case DimVocabulary:
		return s.Vocabulary, true
	case DimConciseness:
		return s.Conciseness, true
	case DimEnthusiasm:
		return s.Enthusiasm, true
	case DimSpecificity:
		return deref(s.Specificity)
	case DimImpactResults:
		return deref(s.ImpactResults)
	case DimFillerControl:
		return deref(s.FillerControl)
	case DimPacing:
		return deref(s.Pacing)
	}
	return 0, false
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Summary      string   `json:"summary"`
}

// StarAnalysis is free-text commentary per STAR component.
type StarAnalysis struct {
	Situation string `json:"situation"`
	Task      string `json:"task"`
	Action    string `json:"action"`
	Result    string `json:"result"`
}

// Source tags which path produced an evaluation.
type Source string

const (
	SourceLocal Source = "local"
	SourceAI    Source = "ai"
)

// Grade is the letter band of an overall score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// RadarPoint is one spoke of a radar chart.
type RadarPoint struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// EvaluationResult is the immutable outcome of evaluating one answer.
// Invariants: OverallScore in [0,100]; Grade derived from OverallScore.
type EvaluationResult struct {
	OverallScore  float64          `json:"overall_score"`
	Grade         Grade            `json:"grade"`
	Dimensions    DimensionScores  `json:"dimension_scores"`
	Feedback      Feedback         `json:"feedback"`
	StarAnalysis  StarAnalysis     `json:"star_analysis"`
	Source        Source           `json:"source"`
	TooShort      bool             `json:"too_short,omitempty"`
	Message       string           `json:"message,omitempty"`
	FillerPenalty float64          `json:"filler_penalty_applied"`
	Features      *LexicalFeatures `json:"features,omitempty"`
}

// Radar returns the local dimensions as radar chart points.
func (r EvaluationResult) Radar() []RadarPoint {
	out := make([]RadarPoint, 0, len(LocalDimensions))
	for _, d := range LocalDimensions {
		v, _ := r.Dimensions.Get(d)
		out = append(out, RadarPoint{Name: d.Title(), Score: v})
	}
	return out
}

// EvaluateRequest carries one answer to evaluate. Any length is accepted;
// the evaluator trims what it sends to the model.
type EvaluateRequest struct {
	Question     string       `json:"question"`
	Answer       string       `json:"answer"`
	Context      string       `json:"context,omitempty"`
	QuestionType QuestionType `json:"question_type,omitempty"`
}

// SegmentResult is the live feedback for one minute of transcript.
type SegmentResult struct {
	Minute           int      `json:"minute"`
	Score            float64  `json:"score"`
	WPM              int      `json:"wpm"`
	FillerCount      int      `json:"filler_count"`
	VocalFillerCount int      `json:"vocal_filler_count"`
	FillerDensityPct float64  `json:"filler_density_pct"`
	FillersFound     []string `json:"fillers_found"`
	Feedback         string   `json:"feedback"`
	Grade            string   `json:"grade"`
}
