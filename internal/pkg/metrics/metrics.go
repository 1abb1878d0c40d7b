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
		Namespace: "turismap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "turismap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "turismap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream data source metrics
	overpassRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turismap",
		Subsystem: "overpass",
		Name:      "requests_total",
		Help:      "Total Overpass interpreter requests by outcome",
	}, []string{"status", "outcome"})

	overpassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "turismap",
		Subsystem: "overpass",
		Name:      "request_duration_seconds",
		Help:      "Overpass round-trip latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	})

	// Domain metrics
	PlacesReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "turismap",
		Subsystem: "places",
		Name:      "results_per_search",
		Help:      "Number of places returned per nearby search",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	SearchesByCategory = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turismap",
		Subsystem: "places",
		Name:      "searches_total",
		Help:      "Total nearby searches by category",
	}, []string{"category"})

	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turismap",
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Authentication events by kind and result",
	}, []string{"event", "result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "turismap",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "turismap",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "turismap",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "turismap",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the route pattern, keeping label cardinality low
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

// ObserveOverpass records one interpreter round trip. status is zero when
// no response was received.
func ObserveOverpass(status int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if status == 0 {
			outcome = "transport_error"
		}
	}
	overpassRequests.WithLabelValues(strconv.Itoa(status), outcome).Inc()
	overpassDuration.Observe(d.Seconds())
}

// ObserveSearch records the category mix and result size of a nearby search.
func ObserveSearch(categories []string, results int) {
	if len(categories) == 0 {
		SearchesByCategory.WithLabelValues("all").Inc()
	}
	for _, c := range categories {
		SearchesByCategory.WithLabelValues(c).Inc()
	}
	PlacesReturned.Observe(float64(results))
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	// Structural interface keeps pgxpool out of this package.
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
