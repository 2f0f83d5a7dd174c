package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nobetci/eczane/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the server
type Metrics struct {
	// Rate limiting
	RateLimitDecisions   *prometheus.CounterVec
	RateLimitTrackedKeys prometheus.Gauge

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pharmacy lookups
	PharmacySourceErrors prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry, including Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nobetci_rate_limit_decisions_total",
			Help: "Rate limit decisions on the protected API prefix, by outcome",
		}, []string{"decision"}),
		RateLimitTrackedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nobetci_rate_limit_tracked_keys",
			Help: "Number of client keys currently held by the rate limiter",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nobetci_http_requests_total",
			Help: "HTTP requests by method, route template and status code",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nobetci_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route template",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		PharmacySourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nobetci_pharmacy_source_errors_total",
			Help: "Failed pharmacy data source lookups",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.RateLimitDecisions,
		m.RateLimitTrackedKeys,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PharmacySourceErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDecision counts one rate limit decision.
func (m *Metrics) ObserveDecision(d ratelimit.Decision) {
	if m == nil {
		return
	}
	m.RateLimitDecisions.WithLabelValues(d.String()).Inc()
}

// SetTrackedKeys records the limiter's current key count.
func (m *Metrics) SetTrackedKeys(n int) {
	if m == nil {
		return
	}
	m.RateLimitTrackedKeys.Set(float64(n))
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncSourceErrors counts one failed pharmacy source lookup.
func (m *Metrics) IncSourceErrors() {
	if m == nil {
		return
	}
	m.PharmacySourceErrors.Inc()
}
