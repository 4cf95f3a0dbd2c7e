package docking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for docking attempts and charger searches.
// A nil *Metrics records nothing.
type Metrics struct {
	AttemptsTotal       *prometheus.CounterVec
	AttemptDuration     prometheus.Histogram
	SearchEpisodesTotal *prometheus.CounterVec
	SearchTurnsTotal    prometheus.Counter
}

// NewMetrics creates the docking collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docking_attempts_total",
				Help: "Total return-to-charger attempts by outcome.",
			},
			[]string{"outcome"},
		),
		AttemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docking_attempt_duration_seconds",
				Help:    "Wall time of return-to-charger attempts in seconds.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		SearchEpisodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docking_search_episodes_total",
				Help: "Total charger search episodes by result (found, exhausted, timed_out).",
			},
			[]string{"result"},
		),
		SearchTurnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docking_search_turns_total",
				Help: "Total in-place turns made while searching for the charger.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.AttemptsTotal,
			m.AttemptDuration,
			m.SearchEpisodesTotal,
			m.SearchTurnsTotal,
		)
	}
	return m
}

func (m *Metrics) observeAttempt(outcome Outcome, took time.Duration) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(outcome.String()).Inc()
	m.AttemptDuration.Observe(took.Seconds())
}

func (m *Metrics) observeEpisode(state SearchState) {
	if m == nil {
		return
	}
	result := "exhausted"
	switch {
	case state.Found:
		result = "found"
	case state.TimedOut:
		result = "timed_out"
	}
	m.SearchEpisodesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) observeTurn() {
	if m == nil {
		return
	}
	m.SearchTurnsTotal.Inc()
}
