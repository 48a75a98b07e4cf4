// Package scoring turns lexical features into calibrated scores: the eight
// dimension local composite, the per-minute live segment score, and the
// readiness index. All calibration comes from config.Scoring.
package scoring

import (
	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// Scorer is safe for concurrent use; it holds only read-only calibration.
type Scorer struct {
	cfg config.Scoring
}

// NewScorer builds a Scorer from a validated calibration.
func NewScorer(cfg config.Scoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the calibration in use.
func (s *Scorer) Config() config.Scoring { return s.cfg }

// Grade maps an overall score to its letter band.
func (s *Scorer) Grade(score float64) domain.Grade {
	for _, b := range s.cfg.Grades {
		if score >= b.Min {
			return domain.Grade(b.Grade)
		}
	}
	return domain.GradeD
}
