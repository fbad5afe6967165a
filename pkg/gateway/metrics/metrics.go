// Package metrics holds the Prometheus instrumentation for the interview
// gateway. All record methods are nil-safe so instrumentation stays
// optional in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	// Session metrics
	SessionsActive   prometheus.Gauge
	SessionsTotal    *prometheus.CounterVec
	SessionDuration  prometheus.Histogram
	TurnsTotal       *prometheus.CounterVec
	TurnDuration     *prometheus.HistogramVec
	AudioBytesTotal  *prometheus.CounterVec
	FinalScores      prometheus.Histogram
	CollabFallbacks  *prometheus.CounterVec
	ResultSaveErrors prometheus.Counter
}

// New creates a Metrics instance with all metrics registered on a private
// registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "voxhire"
	}

	registry := prometheus.NewRegistry()

	sessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of active interview sessions",
		},
	)

	sessionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of interview sessions",
		},
		[]string{"outcome"},
	)

	sessionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Interview session duration in seconds",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800, 3600},
		},
	)

	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of processed interview turns",
		},
		[]string{"stage", "status"},
	)

	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Turn processing duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	audioBytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "Total audio bytes processed",
		},
		[]string{"direction"},
	)

	finalScores := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Distribution of final interview scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	collabFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_fallbacks_total",
			Help:      "Turns where a collaborator failed and a fallback was used",
		},
		[]string{"collaborator"},
	)

	resultSaveErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_save_errors_total",
			Help:      "Failed attempts to persist an interview result",
		},
	)

	registry.MustRegister(
		sessionsActive,
		sessionsTotal,
		sessionDuration,
		turnsTotal,
		turnDuration,
		audioBytesTotal,
		finalScores,
		collabFallbacks,
		resultSaveErrors,
	)

	return &Metrics{
		registry:         registry,
		SessionsActive:   sessionsActive,
		SessionsTotal:    sessionsTotal,
		SessionDuration:  sessionDuration,
		TurnsTotal:       turnsTotal,
		TurnDuration:     turnDuration,
		AudioBytesTotal:  audioBytesTotal,
		FinalScores:      finalScores,
		CollabFallbacks:  collabFallbacks,
		ResultSaveErrors: resultSaveErrors,
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSessionStart records a new session starting.
func (m *Metrics) RecordSessionStart() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session ending with its outcome.
func (m *Metrics) RecordSessionEnd(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
	m.SessionsTotal.WithLabelValues(outcome).Inc()
	m.SessionDuration.Observe(duration.Seconds())
}

// RecordTurn records a processed turn.
func (m *Metrics) RecordTurn(stage, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(stage, status).Inc()
	m.TurnDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordAudio records audio bytes moving through the gateway.
func (m *Metrics) RecordAudio(direction string, bytes int) {
	if m == nil || bytes <= 0 {
		return
	}
	m.AudioBytesTotal.WithLabelValues(direction).Add(float64(bytes))
}

// RecordFinalScore records a completed interview's total score.
func (m *Metrics) RecordFinalScore(score float64) {
	if m == nil {
		return
	}
	m.FinalScores.Observe(score)
}

// RecordFallback records a collaborator failure that was absorbed.
func (m *Metrics) RecordFallback(collaborator string) {
	if m == nil {
		return
	}
	m.CollabFallbacks.WithLabelValues(collaborator).Inc()
}

// RecordResultSaveError records a failed result persistence attempt.
func (m *Metrics) RecordResultSaveError() {
	if m == nil {
		return
	}
	m.ResultSaveErrors.Inc()
}
