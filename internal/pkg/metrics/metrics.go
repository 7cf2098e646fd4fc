package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/samirrijal/driverdash/internal/core/domain"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "driverdash",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "driverdash",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Reconciliation metrics
	ReconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "reconcile",
		Name:      "total",
		Help:      "Reconciliations by outcome (path, empty)",
	}, []string{"outcome"})

	ReconcileInverted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "reconcile",
		Name:      "inverted_total",
		Help:      "Paths whose axes had to be swapped",
	})

	ReconcileSnapped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "reconcile",
		Name:      "snapped_total",
		Help:      "Path endpoints snapped onto a trip endpoint",
	}, []string{"endpoint"})

	ReconcileAutoSelect = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "reconcile",
		Name:      "auto_select_total",
		Help:      "Reconciliations that switched the active trip",
	})

	ReconcileDroppedPoints = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "reconcile",
		Name:      "dropped_points_total",
		Help:      "Raw path points that could not be read",
	})

	RouteFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "reconcile",
		Name:      "fallback_total",
		Help:      "Planned routes drawn as a straight pickup-destination line",
	})

	// Routing backend metrics
	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "driverdash",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Duration of routing backend calls",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	BackendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "backend",
		Name:      "errors_total",
		Help:      "Total routing backend errors",
	}, []string{"operation"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "driverdash",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driverdash",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "driverdash",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "driverdash",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "driverdash",
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
		path := c.Route().Path // route pattern keeps trip ids out of the labels
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

// ObserveReconciliation records the outcome of one reconciliation.
func ObserveReconciliation(res domain.Reconciliation) {
	if !res.HasPath() {
		ReconcileTotal.WithLabelValues("empty").Inc()
	} else {
		ReconcileTotal.WithLabelValues("path").Inc()
	}
	if res.Inverted {
		ReconcileInverted.Inc()
	}
	if res.SnappedStart {
		ReconcileSnapped.WithLabelValues("start").Inc()
	}
	if res.SnappedEnd {
		ReconcileSnapped.WithLabelValues("end").Inc()
	}
	if res.AutoSelectedTripID != "" {
		ReconcileAutoSelect.Inc()
	}
	ReconcileDroppedPoints.Add(float64(res.DroppedPoints))
}

// ObserveBackend records the latency and outcome of a routing backend call.
func ObserveBackend(operation string, start time.Time, err error) {
	BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		BackendErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	// Matched structurally so this package does not import pgxpool.
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
