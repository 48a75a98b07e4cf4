package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/nlp"
	"github.com/fairyhunter13/interview-engine/pkg/numx"
	"github.com/fairyhunter13/interview-engine/pkg/textx"
)

// TooShortMessage is reported for answers under the minimum visible length.
const TooShortMessage = "Answer too short to evaluate"

var improvementTips = map[domain.Dimension]string{
	domain.DimRelevance:     "Add more context: your answer is too brief",
	domain.DimStarStructure: "Structure with STAR: Situation, Task, Action, Result",
	domain.DimClarity:       "Reduce filler words and pause instead of saying 'uhm' or 'um'",
	domain.DimTone:          "Use more positive, action-oriented language",
	domain.DimDepth:         "Add specific numbers or metrics to quantify your impact",
	domain.DimVocabulary:    "Use stronger action verbs such as 'implemented', 'optimized', 'led'",
	domain.DimConciseness:   "Be more concise and aim for 120-180 words",
	domain.DimEnthusiasm:    "Show more energy: recruiters hire passionate people",
}

// ImprovementTip returns the fixed tip for a dimension.
func ImprovementTip(d domain.Dimension) string {
	if tip, ok := improvementTips[d]; ok {
		return tip
	}
	return "Improve " + d.Title()
}

// Score evaluates text locally. It never fails: short or empty input yields
// the too-short result with a zero score.
func (s *Scorer) Score(text string, qt domain.QuestionType) domain.EvaluationResult {
	if textx.VisibleLen(text) < s.cfg.MinAnswerChars {
		return s.tooShort()
	}
	f := nlp.Extract(text)
	return s.ScoreFeatures(f, qt)
}

// ScoreFeatures scores already extracted features.
func (s *Scorer) ScoreFeatures(f domain.LexicalFeatures, qt domain.QuestionType) domain.EvaluationResult {
	dims, penalty := s.dimensions(f, qt)
	overall := s.overall(dims)
	res := domain.EvaluationResult{
		OverallScore:  overall,
		Grade:         s.Grade(overall),
		Dimensions:    dims,
		StarAnalysis:  localStarAnalysis(f.Star),
		Source:        domain.SourceLocal,
		FillerPenalty: numx.Round(penalty, 2),
		Features:      &f,
	}
	res.Feedback = domain.Feedback{
		Strengths:    s.strengths(dims),
		Improvements: s.improvements(dims),
		Summary:      localSummary(res),
	}
	return res
}

func (s *Scorer) tooShort() domain.EvaluationResult {
	return domain.EvaluationResult{
		OverallScore: 0,
		Grade:        s.Grade(0),
		Source:       domain.SourceLocal,
		TooShort:     true,
		Message:      TooShortMessage,
		Feedback: domain.Feedback{
			Strengths:    []string{},
			Improvements: []string{ImprovementTip(domain.DimRelevance)},
			Summary:      TooShortMessage,
		},
	}
}

func (s *Scorer) dimensions(f domain.LexicalFeatures, qt domain.QuestionType) (domain.DimensionScores, float64) {
	p := s.cfg.Dimensions
	wc := float64(f.Readability.WordCount)
	powerCats := float64(f.PowerWords.Categories())

	relevance := p.RelevanceBase + wc/p.RelevanceWordsPerPoint

	star := float64(f.Star.Filled()) * p.StarPointsPerComponent

	var weighted float64
	for _, h := range f.Fillers {
		weighted += float64(h.Count*h.Severity) * p.FillerPenaltyFactor
	}
	penalty := math.Min(p.FillerPenaltyCap, weighted)
	clarity := f.Readability.FleschEase/10 - penalty

	tone := p.ToneBase + float64(f.PositiveTerms) - float64(f.NegativeTerms)*p.ToneNegativeFactor + powerCats*p.TonePowerFactor

	depth := p.DepthBase + wc/p.DepthWordsPerPoint
	if f.HasQuantifiedResult {
		depth += p.DepthQuantifiedBonus
	}
	if f.HasSpecifics {
		depth += p.DepthSpecificsBonus
	}

	vocab := p.VocabBase + f.UniqueWordRatio*p.VocabUniqueFactor + powerCats*p.VocabPowerFactor

	ideal := float64(p.ConciseIdealLong)
	if qt.PrefersShortAnswer() {
		ideal = float64(p.ConciseIdealShort)
	}
	deviation := math.Abs(wc-ideal) / ideal
	concise := math.Max(p.ConciseFloor, 10-deviation*p.ConciseDeviationFactor)

	enthusiasm := p.EnthusiasmBase + float64(f.Exclamations) + powerCats*p.EnthusiasmPowerFactor
	if f.ConfidentOpener {
		enthusiasm += p.EnthusiasmOpenerBonus
	}

	return domain.DimensionScores{
		Relevance:     dim(relevance),
		StarStructure: dim(star),
		Clarity:       dim(clarity),
		Tone:          dim(tone),
		Depth:         dim(depth),
		Vocabulary:    dim(vocab),
		Conciseness:   dim(concise),
		Enthusiasm:    dim(enthusiasm),
	}, penalty
}

// dim clamps to [0,10] and rounds to one decimal.
func dim(v float64) float64 { return numx.Round(numx.Clamp(v, 0, 10), 1) }

// Overall computes the weighted 0-100 score of the local dimensions.
func (s *Scorer) overall(d domain.DimensionScores) float64 {
	w := s.cfg.Weights
	sum := d.Relevance*w.Relevance +
		d.StarStructure*w.StarStructure +
		d.Clarity*w.Clarity +
		d.Tone*w.Tone +
		d.Depth*w.Depth +
		d.Vocabulary*w.Vocabulary +
		d.Conciseness*w.Conciseness +
		d.Enthusiasm*w.Enthusiasm
	return numx.Round(numx.Clamp(sum*10, 0, 100), 1)
}

type scored struct {
	dim   domain.Dimension
	score float64
}

func (s *Scorer) strengths(d domain.DimensionScores) []string {
	picked := pick(d, func(v float64) bool { return v >= s.cfg.StrengthThreshold })
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].score > picked[j].score })
	out := make([]string, 0, s.cfg.MaxStrengths)
	for _, p := range picked {
		if len(out) == s.cfg.MaxStrengths {
			break
		}
		out = append(out, fmt.Sprintf("Strong %s (%s/10)", p.dim.Title(), strconv.FormatFloat(p.score, 'f', 1, 64)))
	}
	return out
}

func (s *Scorer) improvements(d domain.DimensionScores) []string {
	picked := pick(d, func(v float64) bool { return v < s.cfg.ImprovementThreshold })
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].score < picked[j].score })
	out := make([]string, 0, s.cfg.MaxImprovements)
	for _, p := range picked {
		if len(out) == s.cfg.MaxImprovements {
			break
		}
		out = append(out, ImprovementTip(p.dim))
	}
	return out
}

func pick(d domain.DimensionScores, keep func(float64) bool) []scored {
	var out []scored
	for _, dm := range domain.LocalDimensions {
		v, _ := d.Get(dm)
		if keep(v) {
			out = append(out, scored{dim: dm, score: v})
		}
	}
	return out
}

func localStarAnalysis(c domain.StarCoverage) domain.StarAnalysis {
	describe := func(ok bool, present, missing string) string {
		if ok {
			return present
		}
		return missing
	}
	return domain.StarAnalysis{
		Situation: describe(c.Situation, "Situation context is described", "No clear situation or background is set up"),
		Task:      describe(c.Task, "Task or goal is stated", "The task, goal, or challenge is not stated"),
		Action:    describe(c.Action, "Personal actions are described", "Describe the specific actions you took"),
		Result:    describe(c.Result, "An outcome is reported", "State the outcome, ideally with a measurable result"),
	}
}

func localSummary(r domain.EvaluationResult) string {
	best, worst := domain.LocalDimensions[0], domain.LocalDimensions[0]
	bv, _ := r.Dimensions.Get(best)
	wv := bv
	for _, d := range domain.LocalDimensions[1:] {
		v, _ := r.Dimensions.Get(d)
		if v > bv {
			best, bv = d, v
		}
		if v < wv {
			worst, wv = d, v
		}
	}
	return fmt.Sprintf("Scored %s/100 (%s) by the local engine. Strongest area: %s. Focus next on %s.",
		strconv.FormatFloat(r.OverallScore, 'f', 1, 64), r.Grade, best.Title(), worst.Title())
}
