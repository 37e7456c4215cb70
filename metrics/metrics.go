// Package metrics exports kernel timings to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-qsim/kernel"
)

// PrometheusCollector implements kernel.MetricsCollector.
type PrometheusCollector struct {
	applyLatency *prometheus.HistogramVec
	amplitudes   *prometheus.CounterVec
}

var _ kernel.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &PrometheusCollector{
		applyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qsim_kernel_apply_seconds",
			Help:    "Latency of one gate application",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"arity", "backend"}),
		amplitudes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qsim_kernel_amplitudes_total",
			Help: "Amplitudes swept by gate applications",
		}, []string{"arity"}),
	}

	for _, m := range []prometheus.Collector{c.applyLatency, c.amplitudes} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordApply implements kernel.MetricsCollector.
func (c *PrometheusCollector) RecordApply(arity int, backend string, amplitudes int, d time.Duration) {
	a := strconv.Itoa(arity)
	c.applyLatency.WithLabelValues(a, backend).Observe(d.Seconds())
	c.amplitudes.WithLabelValues(a).Add(float64(amplitudes))
}
