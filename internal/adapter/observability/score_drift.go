package observability

import (
	"log/slog"
	"math"
	"sync"
)

// ScoreDriftMonitor tracks how far model scores wander from the local
// engine's scores for the same answers. Drift is the mean absolute
// difference over a sliding window, per kind.
type ScoreDriftMonitor struct {
	mu             sync.RWMutex
	model          string
	windowSize     int
	driftThreshold float64
	diffs          map[string][]float64
}

// NewScoreDriftMonitor creates a monitor for one model.
func NewScoreDriftMonitor(model string, windowSize int, driftThreshold float64) *ScoreDriftMonitor {
	if windowSize <= 0 {
		windowSize = 1
	}
	return &ScoreDriftMonitor{
		model:          model,
		windowSize:     windowSize,
		driftThreshold: driftThreshold,
		diffs:          make(map[string][]float64),
	}
}

// Record adds one model/local score pair and publishes the drift once the
// window is full.
func (m *ScoreDriftMonitor) Record(kind string, modelScore, localScore float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	w := append(m.diffs[kind], math.Abs(modelScore-localScore))
	if len(w) > m.windowSize {
		w = w[len(w)-m.windowSize:]
	}
	m.diffs[kind] = w
	if len(w) < m.windowSize {
		return
	}
	drift := mean(w)
	RecordScoreDrift(kind, m.model, drift)
	if drift > m.driftThreshold {
		slog.Warn("score drift detected",
			slog.String("kind", kind),
			slog.String("model", m.model),
			slog.Float64("drift", drift),
			slog.Float64("threshold", m.driftThreshold))
	}
}

// Drift returns the mean absolute difference of the samples recorded for kind.
func (m *ScoreDriftMonitor) Drift(kind string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return mean(m.diffs[kind])
}

// Samples returns a copy of the recorded differences for kind.
func (m *ScoreDriftMonitor) Samples(kind string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, len(m.diffs[kind]))
	copy(out, m.diffs[kind])
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
