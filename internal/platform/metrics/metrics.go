package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the transport-level Prometheus metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	AccessChecks    *prometheus.CounterVec
	SessionsCreated prometheus.Counter
}

// New creates and registers metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics on the given registerer. Tests pass a fresh
// prometheus.NewRegistry so repeated construction does not panic.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetgate_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		AccessChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_access_checks_total",
			Help: "Access check requests by outcome",
		}, []string{"outcome"}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetgate_sessions_created_total",
			Help: "Total number of sessions created",
		}),
	}
}
