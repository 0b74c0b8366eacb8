package metrics

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registerer prometheus.Registerer

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	PatientsCreatedTotal prometheus.Counter
	PatientsDeletedTotal prometheus.Counter
	AppointmentsTotal    *prometheus.CounterVec
	ResultsRecordedTotal prometheus.Counter

	DBQueryDuration *prometheus.HistogramVec
}

// NewCollector registers every metric on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	ns := sanitize(serviceName)
	factory := promauto.With(reg)

	return &Collector{
		registerer: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		PatientsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "patients_created_total",
			Help:      "Total number of patient records created.",
		}),

		PatientsDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "patients_deleted_total",
			Help:      "Total number of patient records deleted, dependents included.",
		}),

		AppointmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "appointment_status_total",
			Help:      "Appointments entering each status, on create or on status change.",
		}, []string{"status"}),

		ResultsRecordedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "clinical",
			Name:      "results_recorded_total",
			Help:      "Total test results recorded.",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "table"}),
	}
}

// RegisterDBStats exports connection pool statistics for db.
func (c *Collector) RegisterDBStats(db *sql.DB, dbName string) error {
	return c.registerer.Register(collectors.NewDBStatsCollector(db, dbName))
}

// HandlerFor serves the metrics gathered by g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// sanitize turns a service name into a valid metric namespace.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, strings.ToLower(name))
}
