package table

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// metrics holds the Prometheus metrics shared by every table in the process,
// labeled by namespace.
type tableMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	keysLookedUp      *prometheus.CounterVec
	lookupMisses      *prometheus.CounterVec
	batchCommitsTotal *prometheus.CounterVec
}

var metrics = newTableMetrics()

func newTableMetrics() *tableMetrics {
	return &tableMetrics{
		operationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimir_table_operations_total",
				Help: "Total number of table operations",
			},
			[]string{"namespace", "operation", "status"},
		),

		operationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mimir_table_operation_duration_seconds",
				Help:    "Table operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"namespace", "operation"},
		),

		keysLookedUp: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimir_table_keys_looked_up_total",
				Help: "Total number of keys passed to Find",
			},
			[]string{"namespace"},
		),

		lookupMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimir_table_lookup_misses_total",
				Help: "Total number of Find keys filled from default rows",
			},
			[]string{"namespace"},
		),

		batchCommitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mimir_table_batch_commits_total",
				Help: "Total number of atomic multi-key batch commits",
			},
			[]string{"namespace", "operation"},
		),
	}
}

// recordOperation records one completed table operation.
func (m *tableMetrics) recordOperation(namespace, operation string, err error, start time.Time) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}
	m.operationsTotal.WithLabelValues(namespace, operation, status).Inc()
	m.operationDuration.WithLabelValues(namespace, operation).Observe(time.Since(start).Seconds())
}
