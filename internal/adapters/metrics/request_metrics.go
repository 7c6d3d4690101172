package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/colony-go/internal/application/common"
)

// RequestMetricsCollector records mediator request latency and outcome
type RequestMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewRequestMetricsCollector creates a new request metrics collector
func NewRequestMetricsCollector() *RequestMetricsCollector {
	return &RequestMetricsCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Request handling duration distribution",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"request", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Requests handled by type and status",
			},
			[]string{"request", "status"},
		),
	}
}

// Register registers the request metrics with the Prometheus registry
func (c *RequestMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{c.duration, c.total} {
		if err := Registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one handled request
func (c *RequestMetricsCollector) Observe(request string, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.duration.WithLabelValues(request, status).Observe(seconds)
	c.total.WithLabelValues(request, status).Inc()
}

// PrometheusMiddleware records latency and status of every mediator request.
// A nil collector turns it into a pass-through.
func PrometheusMiddleware(collector *RequestMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.Observe(requestName(request), time.Since(start).Seconds(), err == nil)

		return response, err
	}
}

// requestName strips pointer and package: "*commands.RunSpawnStepCommand"
// becomes "RunSpawnStepCommand".
func requestName(request common.Request) string {
	if request == nil {
		return "Unknown"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
