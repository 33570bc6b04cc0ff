// Package metrics provides Prometheus metrics for the router.
package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Default histogram buckets for request and probe latency.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric collectors for the router.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	ProbeDuration  prometheus.Histogram
	ProbeResponses *prometheus.CounterVec
	ProbeErrors    *prometheus.CounterVec

	RouteDecisions *prometheus.CounterVec
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "via_proxy_http_requests_total",
			Help: "Total inbound HTTP requests.",
		}, []string{"method", "status_code", "path_prefix"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "via_proxy_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method", "status_code", "path_prefix"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "via_proxy_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),

		ProbeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "via_proxy_probe_duration_seconds",
			Help:    "Upstream probe latency in seconds, including redirects.",
			Buckets: defaultBuckets,
		}),

		ProbeResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "via_proxy_probe_responses_total",
			Help: "Upstream probe responses by status class.",
		}, []string{"status_class"}),

		ProbeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "via_proxy_probe_errors_total",
			Help: "Failed upstream probes by error kind.",
		}, []string{"kind"}),

		RouteDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "via_proxy_route_decisions_total",
			Help: "Routing decisions by destination.",
		}, []string{"destination"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.ProbeDuration,
		m.ProbeResponses,
		m.ProbeErrors,
		m.RouteDecisions,
	)

	return m
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// knownPrefixes lists the fixed routes that get their own path label.
var knownPrefixes = []string{"/_status", "/healthz", "/proxy/status", "/pdf"}

// NormalizePath returns a bounded path label for Prometheus metrics.
// metricsPath is the configured scrape endpoint and is labelled as itself.
// Every other path outside the fixed routes is a routed third-party URL and
// maps to "route".
func NormalizePath(path, metricsPath string) string {
	if metricsPath != "" && path == metricsPath {
		return metricsPath
	}
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return prefix
		}
	}
	return "route"
}

// StatusClass returns "2xx", "3xx" etc. for an HTTP status code.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}
