package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-qsim/gate"
	"github.com/cwbudde/algo-qsim/kernel"
)

func TestRecordApply(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	c.RecordApply(2, "generic", 1024, 3*time.Millisecond)
	c.RecordApply(2, "generic", 1024, time.Millisecond)
	c.RecordApply(1, "lanes", 16, time.Microsecond)

	assert.Equal(t, 2048.0, promtest.ToFloat64(c.amplitudes.WithLabelValues("2")))
	assert.Equal(t, 16.0, promtest.ToFloat64(c.amplitudes.WithLabelValues("1")))
	assert.Equal(t, 2, promtest.CollectAndCount(c.applyLatency))
}

func TestDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	_, err = NewPrometheusCollector(reg)
	assert.Error(t, err)
}

func TestEngineIntegration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	eng, err := kernel.New(kernel.WithBackend("generic"), kernel.WithMetrics(c))
	require.NoError(t, err)

	psi := make([]complex128, 8)
	psi[0] = 1
	eng.Apply(psi, []uint{0}, gate.H(), 0)
	eng.Apply(psi, []uint{2, 1, 0}, gate.Toffoli(), 0)

	assert.Equal(t, 8.0, promtest.ToFloat64(c.amplitudes.WithLabelValues("1")))
	assert.Equal(t, 8.0, promtest.ToFloat64(c.amplitudes.WithLabelValues("3")))
}
