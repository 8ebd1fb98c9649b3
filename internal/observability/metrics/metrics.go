package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics records per-route request counts and latencies.
type HTTPMetrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	overdueInvoices  prometheus.Gauge
	sweepRunsTotal   prometheus.Counter
	rateLimitDenials prometheus.Counter
}

func New() *HTTPMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &HTTPMetrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitekhata_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitekhata_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		overdueInvoices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitekhata_overdue_invoices",
			Help: "Open invoices past their due date, from the last sweep.",
		}),
		sweepRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitekhata_overdue_sweep_runs_total",
			Help: "Completed overdue sweep passes.",
		}),
		rateLimitDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitekhata_rate_limit_denied_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.overdueInvoices,
		m.sweepRunsTotal,
		m.rateLimitDenials,
	)
	return m
}

// GinMiddleware observes every request finishing on the engine.
func (m *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry for the /metrics endpoint.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *HTTPMetrics) SetOverdueInvoices(count int64) {
	m.overdueInvoices.Set(float64(count))
}

func (m *HTTPMetrics) IncSweepRun() {
	m.sweepRunsTotal.Inc()
}

func (m *HTTPMetrics) IncRateLimitDenied() {
	m.rateLimitDenials.Inc()
}
