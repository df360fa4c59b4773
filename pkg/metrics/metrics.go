package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Appointment store metrics
	StoreMutations *prometheus.CounterVec
	Appointments   prometheus.Gauge

	// Persistence slot metrics
	PersistenceLoads   *prometheus.CounterVec
	PersistenceSaves   *prometheus.CounterVec
	PersistenceLatency *prometheus.HistogramVec

	// Backup worker metrics
	BackupRuns *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec
}

// NewMetrics creates all application metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StoreMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Total number of appointment store mutations",
		}, []string{"operation", "status"}),
		Appointments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "appointments",
			Help:      "Number of appointments in the latest snapshot",
		}),

		PersistenceLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_loads_total",
			Help:      "Total number of slot loads by result",
		}, []string{"result"}),
		PersistenceSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_saves_total",
			Help:      "Total number of slot saves by status",
		}, []string{"status"}),
		PersistenceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persistence_operation_duration_seconds",
			Help:      "Duration of slot operations",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		BackupRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_runs_total",
			Help:      "Total number of slot backup runs",
		}, []string{"status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ErrorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of HTTP errors",
		}, []string{"method", "path", "type"}),
	}
}

// New creates metrics on a private registry; useful for tests and the CLI.
func New(namespace string) *Metrics {
	return NewMetrics(prometheus.NewRegistry(), namespace)
}
