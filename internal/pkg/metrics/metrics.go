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
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbmapper",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobbmapper",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobbmapper",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Search metrics
	QueryOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbmapper",
		Subsystem: "search",
		Name:      "outcomes_total",
		Help:      "Total viewport queries by outcome",
	}, []string{"outcome"})

	MatchedMunicipalities = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jobbmapper",
		Subsystem: "search",
		Name:      "matched_municipalities",
		Help:      "Municipalities inside each queried viewport",
		Buckets:   []float64{0, 1, 5, 10, 20, 40, 80, 160, 500, 1000},
	})

	// Dataset metrics
	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jobbmapper",
		Subsystem: "dataset",
		Name:      "rows",
		Help:      "Municipalities in the loaded snapshot",
	})

	DatasetLoadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbmapper",
		Subsystem: "dataset",
		Name:      "load_errors_total",
		Help:      "Dataset load failures by reason",
	}, []string{"reason"})

	DatasetLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jobbmapper",
		Subsystem: "dataset",
		Name:      "load_duration_seconds",
		Help:      "Duration of the startup dataset load",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	DatasetDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbmapper",
		Subsystem: "dataset",
		Name:      "downloads_total",
		Help:      "Remote dataset fetches by result",
	}, []string{"result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jobbmapper",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbmapper",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbmapper",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
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
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
