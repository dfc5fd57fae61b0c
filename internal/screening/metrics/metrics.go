package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the screening pipeline.
type Metrics struct {
	ScreeningsTotal   *prometheus.CounterVec
	ScreeningDuration prometheus.Histogram
	SourceErrorsTotal *prometheus.CounterVec
	SourceHitsTotal   *prometheus.CounterVec
}

// New creates and registers all screening metrics.
func New() *Metrics {
	return &Metrics{
		ScreeningsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_screenings_total",
			Help: "Total screening evaluations by automatic decision",
		}, []string{"decision"}),
		ScreeningDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_screening_duration_seconds",
			Help:    "Duration of a full single-subject screening",
			Buckets: prometheus.DefBuckets,
		}),
		SourceErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_screening_source_errors_total",
			Help: "Degraded per-source lookups by watchlist source",
		}, []string{"source"}),
		SourceHitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_screening_source_hits_total",
			Help: "Watchlist hits by source",
		}, []string{"source"}),
	}
}

// ObserveScreening records one completed evaluation.
func (m *Metrics) ObserveScreening(decision string, duration time.Duration) {
	m.ScreeningsTotal.WithLabelValues(decision).Inc()
	m.ScreeningDuration.Observe(duration.Seconds())
}

// IncSourceError records a degraded lookup for a source.
func (m *Metrics) IncSourceError(source string) {
	m.SourceErrorsTotal.WithLabelValues(source).Inc()
}

// IncSourceHit records a hit on a source.
func (m *Metrics) IncSourceHit(source string) {
	m.SourceHitsTotal.WithLabelValues(source).Inc()
}
