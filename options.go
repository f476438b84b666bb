package attrgraph

import (
	"github.com/hupe1980/attrgraph/internal/arena"
	"github.com/hupe1980/attrgraph/internal/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	increment        int
	offHeap          bool
	memoryLimit      int64
	maxDepth         int
}

// Option configures NewContext.
type Option func(*options)

// WithLogger sets the logger. Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &attrgraph.BasicMetricsCollector{}
//	ctx := attrgraph.NewContext(attrgraph.WithMetricsCollector(metrics))
//	// ... use ctx ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithIncrement sets the arena block size used for node storage.
// Zero keeps the default; small values are raised to the arena minimum.
func WithIncrement(n int) Option {
	return func(o *options) {
		o.increment = n
	}
}

// WithOffHeap stores node data in anonymous memory mappings instead of the
// Go heap, keeping large graphs out of the garbage collector's working set.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithMemoryLimit caps the bytes the context's arena may reserve. Exceeding
// the cap is fatal: the allocating call panics.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxViewDepth bounds how many views a resolution may pass through.
func WithMaxViewDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

func (o *options) arenaOptions() []arena.Option {
	opts := []arena.Option{arena.WithIncrement(o.increment)}

	if o.offHeap {
		opts = append(opts, arena.WithBlockSource(arena.NewMmapSource()))
	}
	if o.memoryLimit > 0 {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
		opts = append(opts, arena.WithMemoryAcquirer(rc))
	}

	return opts
}
