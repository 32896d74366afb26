// Package observability provides the Prometheus metrics and OpenTelemetry
// tracing wrappers shared across the HTTP layer and pipeline stages.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector registers and serves the service's Prometheus metrics.
type MetricsCollector struct {
	registry prometheus.Registerer
	service  *ServiceMetrics
}

// ServiceMetrics are the standard request-path metrics every handler emits.
type ServiceMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestCount    *prometheus.CounterVec
	PipelineStage   *prometheus.HistogramVec
}

// NewMetricsCollector constructs a MetricsCollector and registers its
// metrics against reg, or the default global registerer when reg is nil.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	service := &ServiceMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "rankingengine_request_duration_seconds",
			Help: "HTTP request duration in seconds.",
		}, []string{"method", "endpoint"}),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rankingengine_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "endpoint", "status"}),
		PipelineStage: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "rankingengine_pipeline_stage_duration_seconds",
			Help: "Duration of each ranking pipeline stage in seconds.",
		}, []string{"stage"}),
	}
	reg.MustRegister(service.RequestDuration, service.RequestCount, service.PipelineStage)
	return &MetricsCollector{registry: reg, service: service}
}

// Service exposes the underlying metric vectors for direct use by the
// ranking pipeline (e.g. ObservePipelineStage).
func (mc *MetricsCollector) Service() *ServiceMetrics { return mc.service }

// ObservePipelineStage records how long one named pipeline stage took.
func (mc *MetricsCollector) ObservePipelineStage(stage string, duration time.Duration) {
	mc.service.PipelineStage.WithLabelValues(stage).Observe(duration.Seconds())
}

// Middleware is a gin.HandlerFunc recording request duration and count,
// keyed by the matched route template rather than the raw path so
// high-cardinality path params don't blow up label cardinality.
func (mc *MetricsCollector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start).Seconds()
		mc.service.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
		mc.service.RequestCount.WithLabelValues(c.Request.Method, endpoint, fmt.Sprintf("%d", c.Writer.Status())).Inc()
	}
}

// Handler returns an http.Handler exposing the Prometheus exposition format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}
