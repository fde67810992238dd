package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	EventsFlagged        *prometheus.CounterVec
	RecordingsRegistered prometheus.Counter
	RecordingsExpired    prometheus.Counter
	RecordingsDeleted    prometheus.Counter
	EventsPurged         prometheus.Counter
	ReportsGenerated     *prometheus.CounterVec
	CleanupDuration      prometheus.Histogram
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	metrics := &Metrics{
		EventsFlagged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "examguard_events_flagged_total",
			Help: "Total number of flagged events by type and severity",
		}, []string{"type", "severity"}),

		RecordingsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examguard_recordings_registered_total",
			Help: "Total number of session recordings registered",
		}),

		RecordingsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examguard_recordings_expired_total",
			Help: "Total number of recordings marked expired by cleanup",
		}),

		RecordingsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examguard_recordings_deleted_total",
			Help: "Total number of recordings removed after the grace period",
		}),

		EventsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examguard_events_purged_total",
			Help: "Total number of expired events purged by cleanup",
		}),

		ReportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "examguard_reports_generated_total",
			Help: "Total number of reports generated by kind",
		}, []string{"kind"}), // "summary", "legal", "export"

		CleanupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "examguard_cleanup_duration_seconds",
			Help:    "Retention cleanup sweep duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordEventFlagged records a newly flagged event.
func (m *Metrics) RecordEventFlagged(eventType, severity string) {
	m.EventsFlagged.WithLabelValues(eventType, severity).Inc()
}

// RecordCleanup records the outcome of a cleanup sweep.
func (m *Metrics) RecordCleanup(expired, deleted, purged int, seconds float64) {
	m.RecordingsExpired.Add(float64(expired))
	m.RecordingsDeleted.Add(float64(deleted))
	m.EventsPurged.Add(float64(purged))
	m.CleanupDuration.Observe(seconds)
}

// RecordReport records a generated report by kind.
func (m *Metrics) RecordReport(kind string) {
	m.ReportsGenerated.WithLabelValues(kind).Inc()
}
