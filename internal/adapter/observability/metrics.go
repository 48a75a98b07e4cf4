package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of model provider calls by provider and outcome",
		},
		[]string{"provider", "status"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Model provider call duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_total",
			Help: "Prompt and completion tokens exchanged with the model provider",
		},
		[]string{"provider", "type"},
	)
	AICacheEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_events_total",
			Help: "Model response cache lookups and writes by result (hit, miss, error, write)",
		},
		[]string{"result"},
	)
	AIInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_invocations_total",
			Help: "Orchestrated model invocations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	AIFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallbacks_total",
			Help: "Invocations that degraded to the local path, by kind and reason",
		},
		[]string{"kind", "reason"},
	)
	CircuitBreakerStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
	ScoreDriftGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evaluation_score_drift",
			Help: "Mean absolute difference between model and local overall scores over the drift window",
		},
		[]string{"kind", "model"},
	)

	EvaluationScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evaluation_overall_score",
			Help:    "Distribution of overall answer scores ([0,100]) by source",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"source"},
	)
	SegmentScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "segment_score",
			Help:    "Distribution of live segment scores ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	ReadinessScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "readiness_total_score",
			Help:    "Distribution of computed readiness totals ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	ReadinessRecomputeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_recompute_total",
			Help: "Readiness recomputations by outcome",
		},
		[]string{"outcome"},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(AIRequestsTotal)
		prometheus.MustRegister(AIRequestDuration)
		prometheus.MustRegister(AITokensTotal)
		prometheus.MustRegister(AICacheEventsTotal)
		prometheus.MustRegister(AIInvocationsTotal)
		prometheus.MustRegister(AIFallbacksTotal)
		prometheus.MustRegister(CircuitBreakerStatus)
		prometheus.MustRegister(ScoreDriftGauge)
		prometheus.MustRegister(EvaluationScoreHistogram)
		prometheus.MustRegister(SegmentScoreHistogram)
		prometheus.MustRegister(ReadinessScoreHistogram)
		prometheus.MustRegister(ReadinessRecomputeTotal)
	})
}

// MetricsHandler exposes the default registry.
func MetricsHandler() http.Handler { return promhttp.Handler() }

// ObserveEvaluation records an overall score from a completed evaluation.
func ObserveEvaluation(source string, overall float64) {
	if overall >= 0 && overall <= 100 {
		EvaluationScoreHistogram.WithLabelValues(source).Observe(overall)
	}
}

func ObserveSegment(score float64) {
	if score >= 0 && score <= 100 {
		SegmentScoreHistogram.Observe(score)
	}
}

// ObserveReadiness records a computed readiness total.
func ObserveReadiness(total float64) {
	ReadinessScoreHistogram.Observe(total)
	ReadinessRecomputeTotal.WithLabelValues("ok").Inc()
}

func RecordCacheEvent(result string) { AICacheEventsTotal.WithLabelValues(result).Inc() }

// RecordFallback counts an invocation that fell back to the local path.
func RecordFallback(kind, reason string) { AIFallbacksTotal.WithLabelValues(kind, reason).Inc() }

func RecordInvocation(kind, outcome string) { AIInvocationsTotal.WithLabelValues(kind, outcome).Inc() }

// RecordCircuitBreakerStatus publishes a breaker's state.
func RecordCircuitBreakerStatus(name string, state int) {
	CircuitBreakerStatus.WithLabelValues(name).Set(float64(state))
}

// RecordScoreDrift publishes the current drift for a kind and model.
func RecordScoreDrift(kind, model string, drift float64) {
	ScoreDriftGauge.WithLabelValues(kind, model).Set(drift)
}

// RecordTokens counts prompt and completion tokens for a provider.
func RecordTokens(provider string, prompt, completion int) {
	AITokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	AITokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
}

// RecordReadinessFailure counts a recomputation that could not be stored.
func RecordReadinessFailure() { ReadinessRecomputeTotal.WithLabelValues("error").Inc() }
