// Package observability holds the Prometheus collectors exported on /metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarflow_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solarflow_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ResolverDroppedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarflow_resolver_dropped_rows_total",
		Help: "Rows left out of a result set because a required reference was missing",
	}, []string{"entity", "reason"})

	DashboardComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solarflow_dashboard_compute_duration_seconds",
		Help:    "Time spent fetching and aggregating dashboard metrics",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	EntityMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarflow_entity_mutations_total",
		Help: "Committed writes by entity and action",
	}, []string{"entity", "action"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solarflow_websocket_clients",
		Help: "Currently connected websocket clients",
	})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
