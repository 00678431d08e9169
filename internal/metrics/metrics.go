// Package metrics defines Prometheus metrics for the broker.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metalbroker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalbroker_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalbroker_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	ClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalbroker_claims_total",
			Help: "Offer claim attempts by outcome",
		},
		[]string{"outcome"},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalbroker_status_transitions_total",
			Help: "Status transitions applied by the reconciler",
		},
		[]string{"entity", "transition"},
	)

	SweepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metalbroker_sweep_duration_seconds",
			Help:    "Reconciliation sweep phase duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	SweepErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metalbroker_sweep_errors_total",
			Help: "Reconciliation sweep phase failures",
		},
		[]string{"phase"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		ClaimsTotal, TransitionsTotal,
		SweepDuration, SweepErrorsTotal,
	)
}
