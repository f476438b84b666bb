package attrgraph

import (
	"time"

	"github.com/hupe1980/attrgraph/internal/arena"
	"github.com/hupe1980/attrgraph/internal/graph"
)

type (
	// Handle identifies a node within a context. The zero value is Nil.
	Handle = graph.Handle
	// WeakHandle is a Handle plus the generation it was taken at.
	WeakHandle = graph.WeakHandle
	// Indirection is the stored form of a view.
	Indirection = graph.Indirection
	// MutableIndirection is a view that accepts writes.
	MutableIndirection = graph.MutableIndirection
	// MemoryStats reports arena usage of a context.
	MemoryStats = arena.Stats
)

const (
	// Nil is the reserved "no node" handle.
	Nil = graph.Nil
	// NoSize makes a view span to the end of its source value.
	NoSize = graph.NoSize
	// MaxOffset is the largest byte offset a view can start at.
	MaxOffset = graph.MaxOffset
)

// ViewOptions configures CreateView.
type ViewOptions struct {
	// Mutable allows writes through the view.
	Mutable bool
	// Dependency is returned by Write so the caller can notify it.
	Dependency Handle
	// Source is the context the source node lives in. Nil means the same context.
	Source *Context
}

// Context is one graph context: a node table with its own arena and a
// process-wide identity. A Context is not safe for concurrent use.
type Context struct {
	table   *graph.Table
	logger  *Logger
	metrics MetricsCollector
}

// NewContext creates an empty graph context.
func NewContext(optFns ...Option) *Context {
	o := options{}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}

	table := graph.NewTable(
		graph.WithArenaOptions(o.arenaOptions()...),
		graph.WithLogger(o.logger.Logger),
		graph.WithMaxDepth(o.maxDepth),
	)

	return &Context{
		table:   table,
		logger:  o.logger.WithContextID(table.ID()),
		metrics: o.metricsCollector,
	}
}

// ID returns the process-wide identity of the context.
func (c *Context) ID() uint64 {
	return c.table.ID()
}

// Len returns the number of live nodes.
func (c *Context) Len() int {
	return c.table.Len()
}

// IsValid reports whether w still denotes the node it was taken for.
func (c *Context) IsValid(w WeakHandle) bool {
	return c.table.IsValid(w)
}

// CreateValue creates a node owning size zeroed bytes. It panics once the
// context is closed.
func (c *Context) CreateValue(size int) WeakHandle {
	w := c.table.CreateValue(size)
	c.metrics.RecordCreate(false)
	return w
}

// CreateView creates a node exposing size bytes (or NoSize for the rest)
// at offset of source's value.
func (c *Context) CreateView(source WeakHandle, offset, size uint32, opts ViewOptions) (WeakHandle, error) {
	gopts := graph.IndirectionOptions{
		Mutable:    opts.Mutable,
		Dependency: opts.Dependency,
	}
	if opts.Source != nil {
		gopts.Context = opts.Source.table
	}

	w, err := c.table.CreateIndirection(source, offset, size, gopts)
	if err != nil {
		return WeakHandle{}, translateError(err)
	}

	c.metrics.RecordCreate(true)
	return w, nil
}

// View returns the indirection backing the view w.
func (c *Context) View(w WeakHandle) (*Indirection, error) {
	ind, err := c.table.Indirection(w)
	return ind, translateError(err)
}

// Redirect points the view w at newSource with length newSize.
func (c *Context) Redirect(w, newSource WeakHandle, newSize uint32) error {
	return translateError(c.table.Redirect(w, newSource, newSize))
}

// Destroy removes node h. Weak handles to it become invalid.
func (c *Context) Destroy(h Handle) error {
	err := translateError(c.table.Destroy(h))
	c.metrics.RecordDestroy(err)
	c.logger.LogDestroy(h, err)
	return err
}

// Value returns the bytes w denotes. The slice aliases node storage and is
// valid until the node or its source is destroyed or the context is reset.
func (c *Context) Value(w WeakHandle) ([]byte, error) {
	start := time.Now()
	v, err := c.table.Value(w)
	err = translateError(err)
	c.metrics.RecordResolve(time.Since(start), err)
	return v, err
}

// Write copies data into the bytes w denotes and returns the dependency
// the caller must notify (Nil when there is none).
func (c *Context) Write(w WeakHandle, data []byte) (Handle, error) {
	start := time.Now()
	dep, err := c.table.Write(w, data)
	err = translateError(err)
	c.metrics.RecordWrite(time.Since(start), err)
	c.logger.LogWrite(w, len(data), dep, err)
	return dep, err
}

// MemoryStats returns the arena statistics of the context.
func (c *Context) MemoryStats() MemoryStats {
	return c.table.Arena().Stats()
}

// Reset destroys every node and releases node storage in bulk.
func (c *Context) Reset() {
	nodes := c.table.Len()
	c.table.Reset()
	c.metrics.RecordReset(nodes)
	c.logger.LogReset(nodes, c.MemoryStats())
}

// Close releases all resources held by the context. Every handle taken from
// it becomes permanently invalid, including views in other contexts whose
// source lives here; operations then report ErrClosed.
func (c *Context) Close() {
	c.table.Close()
}
