package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the check-in module.
// All methods are nil-safe so services can run without metrics in tests.
type Metrics struct {
	// Orchestration outcomes by terminal state and whether a check-in was planned
	Outcomes *prometheus.CounterVec

	// Stage latencies: resolve, render, print, participant_write, team_write, team_read
	StageLatency *prometheus.HistogramVec

	// Labels rendered by kind: participant, asset
	LabelsRendered *prometheus.CounterVec

	// Print failures (never fail a request, so only visible here and in logs)
	PrintFailures prometheus.Counter

	// Background (fire-and-forget) runs currently in flight
	BackgroundInFlight prometheus.Gauge
}

// New creates and registers all check-in metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_checkin_outcomes_total",
			Help: "Total check-in orchestrations by terminal state and plan",
		}, []string{"state", "plan"}),

		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regdesk_checkin_stage_duration_seconds",
			Help:    "Duration of orchestration stages by stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),

		LabelsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_labels_rendered_total",
			Help: "Total labels rendered by kind",
		}, []string{"kind"}),

		PrintFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "regdesk_label_print_failures_total",
			Help: "Total label print dispatches that failed",
		}),

		BackgroundInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "regdesk_background_runs_in_flight",
			Help: "Fire-and-forget orchestrations currently running",
		}),
	}
}

// IncrementOutcome records a terminal orchestration state.
func (m *Metrics) IncrementOutcome(state, plan string) {
	if m != nil {
		m.Outcomes.WithLabelValues(state, plan).Inc()
	}
}

// ObserveStage records the duration of one stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementLabels records a rendered label.
func (m *Metrics) IncrementLabels(kind string) {
	if m != nil {
		m.LabelsRendered.WithLabelValues(kind).Inc()
	}
}

// IncrementPrintFailures records a failed print dispatch.
func (m *Metrics) IncrementPrintFailures() {
	if m != nil {
		m.PrintFailures.Inc()
	}
}

// BackgroundStarted and BackgroundFinished track fire-and-forget runs.
func (m *Metrics) BackgroundStarted() {
	if m != nil {
		m.BackgroundInFlight.Inc()
	}
}

func (m *Metrics) BackgroundFinished() {
	if m != nil {
		m.BackgroundInFlight.Dec()
	}
}
