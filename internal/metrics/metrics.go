package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counts provisioning calls by backend and outcome.
	ProvisionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duck_rage_provision_total",
			Help: "Total number of secret provisioning calls (by backend and status).",
		},
		[]string{"backend", "status"},
	)

	// Measures duration of registration statement executions.
	StatementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duck_rage_statement_duration_seconds",
			Help:    "Duration of credential registration statement executions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"backend"},
	)

	AuditPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duck_rage_audit_publish_errors_total",
			Help: "Number of audit event publish failures",
		},
		[]string{"subject"},
	)
)

// ObserveDuration records the time taken since start and updates the given histogram.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// counters are not meant for duration tracking
	}
}

// IncProvision bumps the provisioning counter.
func IncProvision(backend, status string) {
	ProvisionTotal.WithLabelValues(backend, status).Inc()
}
