package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Discharge pipeline
	DischargeEvaluations *prometheus.CounterVec
	AutoDischarges       prometheus.Counter
	DischargeReviews     *prometheus.CounterVec
	StatusTransitions    *prometheus.CounterVec

	// Outbox
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram

	// Database
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DischargeEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discharge_evaluations_total",
			Help:      "Total discharge criteria evaluations, labeled by verdict",
		}, []string{"should_discharge"}),
		AutoDischarges: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_discharges_total",
			Help:      "Total auto-discharge transitions applied",
		}),
		DischargeReviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discharge_reviews_total",
			Help:      "Total discharge request reviews, labeled by decision",
		}, []string{"decision"}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patient_status_transitions_total",
			Help:      "Total patient status transitions, labeled by target status",
		}, []string{"to"}),

		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}

// NewTestMetrics builds an unregistered Metrics for tests, avoiding
// duplicate-registration panics across packages.
func NewTestMetrics() *Metrics {
	return &Metrics{
		DischargeEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_discharge_evaluations_total",
		}, []string{"should_discharge"}),
		AutoDischarges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_auto_discharges_total",
		}),
		DischargeReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_discharge_reviews_total",
		}, []string{"decision"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_patient_status_transitions_total",
		}, []string{"to"}),
		OutboxEventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_outbox_events_processed_total",
		}),
		OutboxEventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "test_outbox_events_failed_total",
		}),
		OutboxProcessingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "test_outbox_processing_duration_seconds",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "test_database_operations_total",
		}, []string{"operation", "status"}),
	}
}
