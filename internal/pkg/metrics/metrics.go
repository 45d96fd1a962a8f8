package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Outcome label values for upstream calls.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wayfinder",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wayfinder",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream services
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Calls to the geocoding and routing services by outcome",
	}, []string{"service", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wayfinder",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the geocoding and routing services",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"service"})

	// Screen behaviour
	SearchesSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Subsystem: "screen",
		Name:      "searches_superseded_total",
		Help:      "Search completions discarded because a newer query replaced them",
	})

	RouteEstimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Subsystem: "screen",
		Name:      "route_estimates_total",
		Help:      "Route estimates produced, by transport mode and duration source",
	}, []string{"mode", "source"})

	RouteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wayfinder",
		Subsystem: "screen",
		Name:      "route_failures_total",
		Help:      "Route estimates that failed, by transport mode",
	}, []string{"mode"})

	ActiveScreens = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wayfinder",
		Subsystem: "screen",
		Name:      "active",
		Help:      "Screens currently open",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wayfinder",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// ObserveUpstream records one call to an upstream service. Use it as
//
//	defer metrics.ObserveUpstream("geocoder", time.Now(), &err)
func ObserveUpstream(service string, start time.Time, errp *error) {
	UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
	outcome := OutcomeOK
	if errp != nil && *errp != nil {
		outcome = OutcomeError
		if errors.Is(*errp, context.Canceled) {
			outcome = OutcomeCancelled
		}
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the registered route pattern, which keeps cardinality low
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
