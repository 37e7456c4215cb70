package kernel

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives one record per gate application.
type MetricsCollector interface {
	// RecordApply is called after each Apply with the gate arity, the backend
	// name, the state length and the elapsed time.
	RecordApply(arity int, backend string, amplitudes int, d time.Duration)
}

// NoopMetricsCollector discards all records. Engines skip timing entirely
// when it is installed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordApply(int, string, int, time.Duration) {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	ApplyCount      atomic.Int64
	AmplitudesTotal atomic.Int64
	TotalNanos      atomic.Int64
	ByArity         [MaxArity + 1]atomic.Int64
}

// RecordApply implements MetricsCollector.
func (b *BasicMetricsCollector) RecordApply(arity int, _ string, amplitudes int, d time.Duration) {
	b.ApplyCount.Add(1)
	b.AmplitudesTotal.Add(int64(amplitudes))
	b.TotalNanos.Add(d.Nanoseconds())
	if arity > 0 && arity <= MaxArity {
		b.ByArity[arity].Add(1)
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	ApplyCount      int64
	AmplitudesTotal int64
	AvgNanos        int64
	ByArity         [MaxArity + 1]int64
}

// GetStats returns a snapshot of the current counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		ApplyCount:      b.ApplyCount.Load(),
		AmplitudesTotal: b.AmplitudesTotal.Load(),
	}
	if s.ApplyCount > 0 {
		s.AvgNanos = b.TotalNanos.Load() / s.ApplyCount
	}
	for k := range s.ByArity {
		s.ByArity[k] = b.ByArity[k].Load()
	}
	return s
}
