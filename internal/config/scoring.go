package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scoring holds every calibration constant of the local scorer, the live
// segment scorer, and the readiness aggregator. Values are re-tunable; the
// validation below only guards ranges and weight sums.
type Scoring struct {
	// MinAnswerChars is the visible length under which an answer is "too short".
	MinAnswerChars       int              `yaml:"min_answer_chars" validate:"min=1"`
	Weights              DimensionWeights `yaml:"weights"`
	Grades               []GradeBand      `yaml:"grades" validate:"min=1,dive"`
	StrengthThreshold    float64          `yaml:"strength_threshold" validate:"gte=0,lte=10"`
	ImprovementThreshold float64          `yaml:"improvement_threshold" validate:"gte=0,lte=10"`
	MaxStrengths         int              `yaml:"max_strengths" validate:"min=0"`
	MaxImprovements      int              `yaml:"max_improvements" validate:"min=0"`
	Dimensions           DimensionParams  `yaml:"dimensions"`
	Segment              SegmentParams    `yaml:"segment"`
	Readiness            ReadinessParams  `yaml:"readiness"`
}

// DimensionWeights must sum to 1.0.
type DimensionWeights struct {
	Relevance     float64 `yaml:"relevance" validate:"gte=0,lte=1"`
	StarStructure float64 `yaml:"star_structure" validate:"gte=0,lte=1"`
	Clarity       float64 `yaml:"clarity" validate:"gte=0,lte=1"`
	Tone          float64 `yaml:"tone" validate:"gte=0,lte=1"`
	Depth         float64 `yaml:"depth" validate:"gte=0,lte=1"`
	Vocabulary    float64 `yaml:"vocabulary" validate:"gte=0,lte=1"`
	Conciseness   float64 `yaml:"conciseness" validate:"gte=0,lte=1"`
	Enthusiasm    float64 `yaml:"enthusiasm" validate:"gte=0,lte=1"`
}

// Sum adds all weights.
func (w DimensionWeights) Sum() float64 {
	return w.Relevance + w.StarStructure + w.Clarity + w.Tone + w.Depth + w.Vocabulary + w.Conciseness + w.Enthusiasm
}

// GradeBand maps scores >= Min to Grade.
type GradeBand struct {
	Min   float64 `yaml:"min" validate:"gte=0,lte=100"`
	Grade string  `yaml:"grade" validate:"required"`
}

type DimensionParams struct {
	RelevanceBase          float64 `yaml:"relevance_base" validate:"gte=0"`
	RelevanceWordsPerPoint float64 `yaml:"relevance_words_per_point" validate:"gt=0"`
	StarPointsPerComponent float64 `yaml:"star_points_per_component" validate:"gt=0"`
	FillerPenaltyFactor    float64 `yaml:"filler_penalty_factor" validate:"gte=0"`
	FillerPenaltyCap       float64 `yaml:"filler_penalty_cap" validate:"gte=0"`
	ToneBase               float64 `yaml:"tone_base" validate:"gte=0,lte=10"`
	ToneNegativeFactor     float64 `yaml:"tone_negative_factor" validate:"gte=0"`
	TonePowerFactor        float64 `yaml:"tone_power_factor" validate:"gte=0"`
	DepthBase              float64 `yaml:"depth_base" validate:"gte=0"`
	DepthWordsPerPoint     float64 `yaml:"depth_words_per_point" validate:"gt=0"`
	DepthQuantifiedBonus   float64 `yaml:"depth_quantified_bonus" validate:"gte=0"`
	DepthSpecificsBonus    float64 `yaml:"depth_specifics_bonus" validate:"gte=0"`
	VocabBase              float64 `yaml:"vocab_base" validate:"gte=0"`
	VocabUniqueFactor      float64 `yaml:"vocab_unique_factor" validate:"gte=0"`
	VocabPowerFactor       float64 `yaml:"vocab_power_factor" validate:"gte=0"`
	ConciseIdealShort      int     `yaml:"concise_ideal_short" validate:"gt=0"`
	ConciseIdealLong       int     `yaml:"concise_ideal_long" validate:"gt=0"`
	ConciseDeviationFactor float64 `yaml:"concise_deviation_factor" validate:"gte=0"`
	ConciseFloor           float64 `yaml:"concise_floor" validate:"gte=0,lte=10"`
	EnthusiasmBase         float64 `yaml:"enthusiasm_base" validate:"gte=0,lte=10"`
	EnthusiasmOpenerBonus  float64 `yaml:"enthusiasm_opener_bonus" validate:"gte=0"`
	EnthusiasmPowerFactor  float64 `yaml:"enthusiasm_power_factor" validate:"gte=0"`
}

type SegmentParams struct {
	IdealWPM            float64 `yaml:"ideal_wpm" validate:"gt=0"`
	PaceDeviationFactor float64 `yaml:"pace_deviation_factor" validate:"gte=0"`
	PaceFloor           float64 `yaml:"pace_floor" validate:"gte=0,lte=100"`
	DensityFactor       float64 `yaml:"density_factor" validate:"gte=0"`
	VocalPenaltyPerHit  float64 `yaml:"vocal_penalty_per_hit" validate:"gte=0"`
	VocalPenaltyCap     float64 `yaml:"vocal_penalty_cap" validate:"gte=0,lte=100"`
	PaceWeight          float64 `yaml:"pace_weight" validate:"gte=0,lte=1"`
	ClarityWeight       float64 `yaml:"clarity_weight" validate:"gte=0,lte=1"`
	GoodMin             float64 `yaml:"good_min" validate:"gte=0,lte=100"`
	FairMin             float64 `yaml:"fair_min" validate:"gte=0,lte=100"`
	VocalIssueMin       int     `yaml:"vocal_issue_min" validate:"min=1"`
	FillerIssueMin      int     `yaml:"filler_issue_min" validate:"min=1"`
	SlowWPM             int     `yaml:"slow_wpm" validate:"min=0"`
	FastWPM             int     `yaml:"fast_wpm" validate:"gtfield=SlowWPM"`
	TopFillers          int     `yaml:"top_fillers" validate:"min=0"`
}

// ReadinessParams weights must sum to 100.
type ReadinessParams struct {
	StreakWeight     float64 `yaml:"streak_weight" validate:"gte=0,lte=100"`
	StreakCapDays    int     `yaml:"streak_cap_days" validate:"min=1"`
	EvaluationWeight float64 `yaml:"evaluation_weight" validate:"gte=0,lte=100"`
	DSAWeight        float64 `yaml:"dsa_weight" validate:"gte=0,lte=100"`
	DSACap           int     `yaml:"dsa_cap" validate:"min=1"`
	ATSWeight        float64 `yaml:"ats_weight" validate:"gte=0,lte=100"`
	MockWeight       float64 `yaml:"mock_weight" validate:"gte=0,lte=100"`
	MockCap          int     `yaml:"mock_cap" validate:"min=1"`
}

// Sum adds all readiness weights.
func (r ReadinessParams) Sum() float64 {
	return r.StreakWeight + r.EvaluationWeight + r.DSAWeight + r.ATSWeight + r.MockWeight
}

// DefaultScoring returns the stock calibration.
func DefaultScoring() Scoring {
	return Scoring{
		MinAnswerChars: 10,
		Weights: DimensionWeights{
			Relevance:     0.18,
			StarStructure: 0.15,
			Clarity:       0.15,
			Tone:          0.10,
			Depth:         0.18,
			Vocabulary:    0.10,
			Conciseness:   0.07,
			Enthusiasm:    0.07,
		},
		Grades: []GradeBand{
			{Min: 88, Grade: "A+"},
			{Min: 80, Grade: "A"},
			{Min: 73, Grade: "B+"},
			{Min: 65, Grade: "B"},
			{Min: 55, Grade: "C+"},
			{Min: 45, Grade: "C"},
			{Min: 0, Grade: "D"},
		},
		StrengthThreshold:    7.5,
		ImprovementThreshold: 5,
		MaxStrengths:         3,
		MaxImprovements:      3,
		Dimensions: DimensionParams{
			RelevanceBase:          3,
			RelevanceWordsPerPoint: 15,
			StarPointsPerComponent: 2.5,
			FillerPenaltyFactor:    0.3,
			FillerPenaltyCap:       4,
			ToneBase:               5,
			ToneNegativeFactor:     0.5,
			TonePowerFactor:        0.5,
			DepthBase:              3,
			DepthWordsPerPoint:     25,
			DepthQuantifiedBonus:   3,
			DepthSpecificsBonus:    2,
			VocabBase:              4,
			VocabUniqueFactor:      6,
			VocabPowerFactor:       0.5,
			ConciseIdealShort:      150,
			ConciseIdealLong:       200,
			ConciseDeviationFactor: 6,
			ConciseFloor:           3,
			EnthusiasmBase:         5,
			EnthusiasmOpenerBonus:  1,
			EnthusiasmPowerFactor:  0.4,
		},
		Segment: SegmentParams{
			IdealWPM:            140,
			PaceDeviationFactor: 0.5,
			PaceFloor:           20,
			DensityFactor:       300,
			VocalPenaltyPerHit:  10,
			VocalPenaltyCap:     30,
			PaceWeight:          0.4,
			ClarityWeight:       0.6,
			GoodMin:             75,
			FairMin:             50,
			VocalIssueMin:       3,
			FillerIssueMin:      5,
			SlowWPM:             60,
			FastWPM:             200,
			TopFillers:          5,
		},
		Readiness: ReadinessParams{
			StreakWeight:     20,
			StreakCapDays:    30,
			EvaluationWeight: 30,
			DSAWeight:        20,
			DSACap:           50,
			ATSWeight:        15,
			MockWeight:       15,
			MockCap:          10,
		},
	}
}

var scoringValidator = validator.New()

// Validate checks ranges and weight sums, and sorts grade bands descending.
func (s *Scoring) Validate() error {
	if err := scoringValidator.Struct(s); err != nil {
		return fmt.Errorf("op=config.Scoring.Validate: %w", err)
	}
	if math.Abs(s.Weights.Sum()-1) > 1e-6 {
		return fmt.Errorf("op=config.Scoring.Validate: dimension weights sum to %.4f, want 1", s.Weights.Sum())
	}
	if math.Abs(s.Segment.PaceWeight+s.Segment.ClarityWeight-1) > 1e-6 {
		return errors.New("op=config.Scoring.Validate: segment pace and clarity weights must sum to 1")
	}
	if math.Abs(s.Readiness.Sum()-100) > 1e-6 {
		return fmt.Errorf("op=config.Scoring.Validate: readiness weights sum to %.2f, want 100", s.Readiness.Sum())
	}
	sort.SliceStable(s.Grades, func(i, j int) bool { return s.Grades[i].Min > s.Grades[j].Min })
	if s.Grades[len(s.Grades)-1].Min != 0 {
		return errors.New("op=config.Scoring.Validate: lowest grade band must start at 0")
	}
	return nil
}

// LoadScoring overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadScoring(path string) (Scoring, error) {
	s := DefaultScoring()
	if path == "" {
		return s, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Scoring{}, fmt.Errorf("op=config.LoadScoring: %w", err)
	}
	// #nosec G304 -- operator-supplied calibration file
	content, err := os.ReadFile(absPath)
	if err != nil {
		return Scoring{}, fmt.Errorf("op=config.LoadScoring: %w", err)
	}
	if err := yaml.Unmarshal(content, &s); err != nil {
		return Scoring{}, fmt.Errorf("op=config.LoadScoring: failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scoring{}, err
	}
	return s, nil
}
