package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for batch rescreen runs.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	SubjectsProcessed prometheus.Counter
	SubjectFailures   prometheus.Counter
	AlertsGenerated   prometheus.Counter
}

// New creates and registers all rescreen metrics.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_rescreen_runs_total",
			Help: "Batch rescreen runs by outcome",
		}, []string{"outcome"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_rescreen_run_duration_seconds",
			Help:    "Duration of a full batch rescreen run",
			Buckets: []float64{1, 5, 15, 60, 300, 900},
		}),
		SubjectsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_rescreen_subjects_processed_total",
			Help: "Subjects screened across all batch runs",
		}),
		SubjectFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_rescreen_subject_failures_total",
			Help: "Subjects skipped due to per-subject failures",
		}),
		AlertsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_rescreen_alerts_generated_total",
			Help: "Alerts emitted by batch rescreen runs",
		}),
	}
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(duration.Seconds())
}
