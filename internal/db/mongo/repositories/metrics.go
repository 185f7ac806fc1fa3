package repositories

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records repository operation counts, failures and latency.
type Metrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewMetrics registers the repository collectors on reg. A nil reg uses the
// default registerer. Namespace defaults to "mongorepo".
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "mongorepo"
	}
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of repository operations",
			},
			[]string{"collection", "operation"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed repository operations",
			},
			[]string{"collection", "operation"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Repository operation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"collection", "operation"},
		),
	}
}

// ObserveOperation records metrics for a single repository call.
func (m *Metrics) ObserveOperation(collection, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(collection, operation).Inc()
	m.latency.WithLabelValues(collection, operation).Observe(duration.Seconds())

	if err != nil {
		m.errors.WithLabelValues(collection, operation).Inc()
	}
}
