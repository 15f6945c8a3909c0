package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports operation outcomes as Prometheus series.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the afriqar collectors on a dedicated registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "afriqar",
		Name:      "operation_duration_seconds",
		Help:      "Duration of catalog, simulation and export operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afriqar",
		Name:      "operations_total",
		Help:      "Operation outcomes by status.",
	}, []string{"operation", "status"})
	reg.MustRegister(duration, total)
	return &PrometheusRecorder{registry: reg, duration: duration, total: total}
}

// Observe implements Recorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, d time.Duration) {
	if operation == "" {
		return
	}
	r.duration.WithLabelValues(operation).Observe(d.Seconds())
	r.total.WithLabelValues(operation, status(success)).Inc()
}

// Registry exposes the underlying registry for gathering in tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
