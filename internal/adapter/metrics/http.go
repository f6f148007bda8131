package metrics

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// apiLatencyBuckets covers in-memory status reads up to history queries against postgres.
var apiLatencyBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

// HTTPMetrics instruments the read-only API. Probes and the scrape endpoint are left out
// so they do not drown the series.
type HTTPMetrics struct {
	Requests    *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	RateLimited *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency by route.",
			Buckets:   apiLatencyBuckets,
		}, []string{"route"}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "API requests rejected by the per-client rate limiter.",
		}, []string{"route"}),
	}

	reg.MustRegister(m.Requests, m.Latency, m.RateLimited)
	return m
}

func instrumented(route string) bool {
	return route != "/metrics" && !strings.HasPrefix(route, "/health/")
}

// Middleware records count and latency per matched route. Unmatched paths are grouped
// under "unmatched" to keep label cardinality bounded.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil || !instrumented(c.Path()) {
				return next(c)
			}

			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
				route := c.Path()
				if route == "" {
					route = "unmatched"
				}
				m.Latency.WithLabelValues(route).Observe(seconds)
				m.Requests.WithLabelValues(route, c.Request().Method, strconv.Itoa(c.Response().Status)).Inc()
			}))
			defer timer.ObserveDuration()

			return next(c)
		}
	}
}

// ObserveRateLimited counts a request rejected by the limiter.
func (m *HTTPMetrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}
