package performance

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusTracker counts executions and observes their duration per label.
// Metrics live in the tracker's own registry.
type PrometheusTracker struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPrometheusTracker creates a tracker with a fresh registry.
func NewPrometheusTracker(namespace string) *PrometheusTracker {
	t := &PrometheusTracker{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "execution",
				Name:      "calls_total",
				Help:      "Total tracked executions.",
			},
			[]string{"label"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "execution",
				Name:      "duration_seconds",
				Help:      "Tracked execution duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"label"},
		),
	}
	t.registry.MustRegister(t.executions, t.duration)
	return t
}

func (t *PrometheusTracker) TrackExecution(label string, start, end time.Time, _ []any) {
	t.executions.WithLabelValues(label).Inc()
	t.duration.WithLabelValues(label).Observe(end.Sub(start).Seconds())
}

// Registry returns the registry holding the tracker metrics.
func (t *PrometheusTracker) Registry() *prometheus.Registry { return t.registry }

// Handler serves the tracker metrics in the Prometheus exposition format.
func (t *PrometheusTracker) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}
