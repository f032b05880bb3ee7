package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain metrics of the lab service
type Metrics struct {
	VisitsCommitted  prometheus.Counter
	VisitsFailed     *prometheus.CounterVec
	VisitsDeleted    prometheus.Counter
	ResultsSaved     *prometheus.CounterVec
	ReportsGenerated *prometheus.CounterVec
	ReceiptsRendered prometheus.Counter

	OperationLatency *prometheus.HistogramVec
}

// New registers all metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VisitsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_committed_total",
			Help:      "Total number of visits committed",
		}),
		VisitsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_failed_total",
			Help:      "Total number of visit commits rejected or rolled back",
		}, []string{"reason"}),
		VisitsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_deleted_total",
			Help:      "Total number of visits deleted",
		}),
		ResultsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_saved_total",
			Help:      "Total number of result saves by outcome",
		}, []string{"status"}),
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Total number of report generations by outcome",
		}, []string{"outcome"}),
		ReceiptsRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_rendered_total",
			Help:      "Total number of receipt pairs rendered",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
	}
}

// ObserveSince records the time elapsed since start under operation.
func (m *Metrics) ObserveSince(operation string, start time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
