package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// Pipeline metrics
	PipelineOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathernow",
		Subsystem: "pipeline",
		Name:      "outcomes_total",
		Help:      "Pipeline runs by terminal outcome",
	}, []string{"outcome", "failure"})

	PipelineRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weathernow",
		Subsystem: "pipeline",
		Name:      "rejected_total",
		Help:      "Triggers rejected because a run was already in flight",
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "weathernow",
		Subsystem: "provider",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of current-weather fetches",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathernow",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weathernow",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})
)

// ObserveFetch records the duration of a provider fetch started at start.
func ObserveFetch(start time.Time) {
	FetchDuration.Observe(time.Since(start).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler exposes the Prometheus registry on a Fiber route.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
