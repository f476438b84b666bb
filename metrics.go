package attrgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCreate is called after a node is created.
	RecordCreate(indirection bool)

	// RecordDestroy is called after each destroy attempt.
	RecordDestroy(err error)

	// RecordResolve is called after each Value call.
	// err is non-nil for stale or out-of-range references.
	RecordResolve(duration time.Duration, err error)

	// RecordWrite is called after each write.
	RecordWrite(duration time.Duration, err error)

	// RecordReset is called after a context reset with the number of nodes dropped.
	RecordReset(nodes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreate(bool)                  {}
func (NoopMetricsCollector) RecordDestroy(error)                {}
func (NoopMetricsCollector) RecordResolve(time.Duration, error) {}
func (NoopMetricsCollector) RecordWrite(time.Duration, error)   {}
func (NoopMetricsCollector) RecordReset(int)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ValueCount        atomic.Int64
	IndirectionCount  atomic.Int64
	DestroyCount      atomic.Int64
	DestroyErrors     atomic.Int64
	ResolveCount      atomic.Int64
	ResolveErrors     atomic.Int64
	ResolveTotalNanos atomic.Int64
	WriteCount        atomic.Int64
	WriteErrors       atomic.Int64
	ResetCount        atomic.Int64
	ResetNodes        atomic.Int64
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(indirection bool) {
	if indirection {
		b.IndirectionCount.Add(1)
	} else {
		b.ValueCount.Add(1)
	}
}

// RecordDestroy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDestroy(err error) {
	b.DestroyCount.Add(1)
	if err != nil {
		b.DestroyErrors.Add(1)
	}
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(duration time.Duration, err error) {
	b.ResolveCount.Add(1)
	b.ResolveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(_ time.Duration, err error) {
	b.WriteCount.Add(1)
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordReset implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReset(nodes int) {
	b.ResetCount.Add(1)
	b.ResetNodes.Add(int64(nodes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ValueCount:       b.ValueCount.Load(),
		IndirectionCount: b.IndirectionCount.Load(),
		DestroyCount:     b.DestroyCount.Load(),
		DestroyErrors:    b.DestroyErrors.Load(),
		ResolveCount:     b.ResolveCount.Load(),
		ResolveErrors:    b.ResolveErrors.Load(),
		ResolveAvgNanos:  b.getAvgResolveNanos(),
		WriteCount:       b.WriteCount.Load(),
		WriteErrors:      b.WriteErrors.Load(),
		ResetCount:       b.ResetCount.Load(),
		ResetNodes:       b.ResetNodes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgResolveNanos() int64 {
	count := b.ResolveCount.Load()
	if count == 0 {
		return 0
	}
	return b.ResolveTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ValueCount       int64
	IndirectionCount int64
	DestroyCount     int64
	DestroyErrors    int64
	ResolveCount     int64
	ResolveErrors    int64
	ResolveAvgNanos  int64
	WriteCount       int64
	WriteErrors      int64
	ResetCount       int64
	ResetNodes       int64
}
