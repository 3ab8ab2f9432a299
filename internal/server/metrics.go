package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry so several servers (and tests)
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	writesTotal         *prometheus.CounterVec
	itemsServed         prometheus.Gauge
}

// NewMetrics creates and registers the postdeck collectors.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postdeck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postdeck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	m.writesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postdeck_writes_total",
			Help: "Feedback, note, text and post writes by outcome",
		},
		[]string{"field", "outcome"},
	)

	m.itemsServed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "postdeck_items_loaded",
			Help: "Number of items in the most recent backend read",
		},
	)

	m.registry.MustRegister(m.httpRequestsTotal, m.httpRequestDuration, m.writesTotal, m.itemsServed)
	return m
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// ObserveWrite counts one write attempt.
func (m *Metrics) ObserveWrite(field string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.writesTotal.WithLabelValues(field, outcome).Inc()
}

func (m *Metrics) observeLoad(n int) {
	m.itemsServed.Set(float64(n))
}
