package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/internal/nlp"
	"github.com/fairyhunter13/interview-engine/pkg/numx"
	"github.com/fairyhunter13/interview-engine/pkg/textx"
)

// Segment grade labels.
const (
	SegmentGood      = "Good"
	SegmentFair      = "Fair"
	SegmentNeedsWork = "Needs Work"

	NoSpeechDetected = "No speech detected"
	clearSpeech      = "Clear and well-paced speech!"
)

// ScoreSegment scores one minute of transcript. The word count of the
// segment is taken as its words per minute. Minutes are 1-based; smaller
// indexes are reported as minute 1.
func (s *Scorer) ScoreSegment(text string, minute int) domain.SegmentResult {
	minute = max(minute, 1)
	p := s.cfg.Segment
	words := textx.Words(text)
	if len(words) == 0 {
		return domain.SegmentResult{
			Minute:       minute,
			FillersFound: []string{},
			Feedback:     NoSpeechDetected,
			Grade:        SegmentNeedsWork,
		}
	}
	wpm := len(words)
	hits := nlp.DetectFillers(text)

	var fillers, vocal int
	found := make([]string, 0, p.TopFillers)
	for _, h := range hits {
		fillers += h.Count
		if h.Category == domain.FillerVocal {
			vocal += h.Count
		}
		if len(found) < p.TopFillers {
			found = append(found, h.Word)
		}
	}

	pace := numx.Clamp(100-math.Abs(float64(wpm)-p.IdealWPM)*p.PaceDeviationFactor, p.PaceFloor, 100)
	density := float64(fillers) / float64(wpm)
	fillerScore := math.Max(0, 100-density*p.DensityFactor)
	vocalPenalty := math.Min(p.VocalPenaltyCap, float64(vocal)*p.VocalPenaltyPerHit)
	clarity := math.Max(0, fillerScore-vocalPenalty)
	score := numx.Round(pace*p.PaceWeight+clarity*p.ClarityWeight, 1)

	return domain.SegmentResult{
		Minute:           minute,
		Score:            score,
		WPM:              wpm,
		FillerCount:      fillers,
		VocalFillerCount: vocal,
		FillerDensityPct: numx.Round(density*100, 1),
		FillersFound:     found,
		Feedback:         s.segmentFeedback(wpm, fillers, vocal),
		Grade:            s.segmentGrade(score),
	}
}

func (s *Scorer) segmentFeedback(wpm, fillers, vocal int) string {
	p := s.cfg.Segment
	var issues []string
	if vocal >= p.VocalIssueMin {
		issues = append(issues, fmt.Sprintf("%d 'uhm/um' sounds: take a breath instead", vocal))
	}
	if fillers >= p.FillerIssueMin {
		issues = append(issues, fmt.Sprintf("%d filler words: slow down", fillers))
	}
	switch {
	case wpm < p.SlowWPM:
		issues = append(issues, "Speaking too slowly: pick up the pace")
	case wpm > p.FastWPM:
		issues = append(issues, "Speaking too fast: pause between points")
	}
	if len(issues) == 0 {
		return clearSpeech
	}
	return strings.Join(issues, " | ")
}

func (s *Scorer) segmentGrade(score float64) string {
	switch {
	case score >= s.cfg.Segment.GoodMin:
		return SegmentGood
	case score >= s.cfg.Segment.FairMin:
		return SegmentFair
	}
	return SegmentNeedsWork
}
