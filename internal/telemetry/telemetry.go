// Package telemetry registers the gateway's Prometheus collectors, grounded
// on the counter/histogram wiring style of a typical chain-RPC gateway:
// request counts, per-code error counts, an in-flight gauge, and publish
// latency histograms.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the gateway exports. Construct one with
// New and pass it to gateway.Config; a nil *Metrics is valid and every
// method becomes a no-op, mirroring the teacher's nil-receiver *metrics.M
// discipline (metrics.go).
type Metrics struct {
	httpRequestsTotal     *prometheus.CounterVec
	rpcErrorsTotal        *prometheus.CounterVec
	correlationsInFlight  prometheus.Gauge
	publishDuration       prometheus.Histogram
	upstreamTimeoutsTotal prometheus.Counter
}

// New registers and returns a fresh Metrics on the default Prometheus
// registry. Call New once per process; registering the same collector name
// twice panics, the usual promauto behavior.
func New() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chainrelay_http_requests_total",
			Help: "Total HTTP requests received by the gateway, by route and status.",
		}, []string{"route", "status"}),
		rpcErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chainrelay_rpc_errors_total",
			Help: "Total JSON-RPC error replies, by error code.",
		}, []string{"code"}),
		correlationsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chainrelay_correlations_in_flight",
			Help: "Number of correlation slots currently awaiting a bus reply.",
		}),
		publishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chainrelay_publish_duration_seconds",
			Help:    "Time from publish to either fulfilment or timeout, per request.",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamTimeoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chainrelay_upstream_timeouts_total",
			Help: "Total requests that timed out waiting for an upstream bus reply.",
		}),
	}
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, status).Inc()
}

// ObserveRPCError records one JSON-RPC error reply by its numeric code.
func (m *Metrics) ObserveRPCError(code string) {
	if m == nil {
		return
	}
	m.rpcErrorsTotal.WithLabelValues(code).Inc()
}

// SetInFlight reports the correlation table's current size.
func (m *Metrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.correlationsInFlight.Set(float64(n))
}

// ObservePublishSeconds records the publish-to-resolution latency for one
// request.
func (m *Metrics) ObservePublishSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.publishDuration.Observe(seconds)
}

// IncUpstreamTimeout records one upstream-timeout outcome.
func (m *Metrics) IncUpstreamTimeout() {
	if m == nil {
		return
	}
	m.upstreamTimeoutsTotal.Inc()
}
