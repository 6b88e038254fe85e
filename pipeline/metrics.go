package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts decode calls. A nil *Metrics records nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	attempts *prometheus.CounterVec
	rotation prometheus.Histogram
	duration *prometheus.HistogramVec
}

// NewMetrics registers the decode collectors with reg. A nil reg leaves
// them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		calls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zxpipe_decode_calls_total",
				Help: "Decode calls by outcome",
			},
			[]string{"mode", "outcome"}, // outcome: found, not_found, error
		),
		attempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zxpipe_decode_attempts_total",
				Help: "Orientations tried across all decode calls",
			},
			[]string{"mode"},
		),
		rotation: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zxpipe_decode_rotation_degrees",
				Help:    "Counter-clockwise rotation applied before a symbol was found",
				Buckets: []float64{0, 90, 180, 270},
			},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zxpipe_decode_duration_seconds",
				Help:    "Decode call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"mode"},
		),
	}
}

func (m *Metrics) observe(mode string, start time.Time, found bool, err error) {
	if m == nil {
		return
	}
	outcome := "not_found"
	switch {
	case err != nil:
		outcome = "error"
	case found:
		outcome = "found"
	}
	m.calls.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// failed records a call rejected before any decoding started.
func (m *Metrics) failed(mode string) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(mode, "error").Inc()
}

func (m *Metrics) attempted(mode string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(mode).Inc()
}

func (m *Metrics) rotated(quarterTurns int) {
	if m == nil {
		return
	}
	m.rotation.Observe(float64(quarterTurns * 90))
}
