package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docchat_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_uploads_total",
			Help: "Document uploads by outcome",
		},
		[]string{"outcome"},
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docchat_extraction_duration_seconds",
			Help:    "Text extraction duration in seconds by format",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"format"},
	)

	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_llm_requests_total",
			Help: "Upstream chat-completion calls by outcome",
		},
		[]string{"outcome"},
	)

	llmDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docchat_llm_duration_seconds",
			Help:    "Upstream chat-completion latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
)

// IncUpload counts an upload outcome (created, rejected, failed).
func IncUpload(outcome string) {
	uploadsTotal.WithLabelValues(outcome).Inc()
}

// ObserveExtraction records how long extraction of one file took.
func ObserveExtraction(format string, d time.Duration) {
	extractionDuration.WithLabelValues(format).Observe(d.Seconds())
}

// ObserveLLM records an upstream call outcome and latency.
func ObserveLLM(outcome string, d time.Duration) {
	llmRequestsTotal.WithLabelValues(outcome).Inc()
	llmDuration.Observe(d.Seconds())
}

// Middleware records request counts and latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
