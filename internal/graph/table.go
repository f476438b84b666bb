package graph

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/attrgraph/internal/arena"
	"github.com/hupe1980/attrgraph/internal/container"
	"github.com/hupe1980/attrgraph/internal/conv"
	"github.com/hupe1980/attrgraph/internal/uid"
)

// DefaultMaxDepth bounds indirection chains followed during resolution.
const DefaultMaxDepth = 64

type kind uint8

const (
	kindFree kind = iota
	kindValue
	kindIndirection
)

type slot struct {
	generation  uint32
	kind        kind
	value       []byte       // kindValue, arena memory
	indirection *Indirection // kindIndirection, arena memory
	peer        *Table       // source context of a cross-context indirection
}

// IndirectionOptions configures CreateIndirection.
type IndirectionOptions struct {
	// Mutable creates a MutableIndirection that accepts writes.
	Mutable bool
	// Dependency is notified when a write goes through a mutable indirection.
	Dependency Handle
	// Context is the table the source lives in. Nil means this table.
	Context *Table
}

// Table is the reference node table of one graph context.
type Table struct {
	id        uint64
	arena     *arena.Arena
	ownsArena bool
	slots     container.SegmentedArray[slot]
	next      Handle
	free      *container.RecyclableList[Handle]
	live      *roaring.Bitmap
	logger    *slog.Logger
	maxDepth  int
	closed    bool
}

type options struct {
	arena     *arena.Arena
	arenaOpts []arena.Option
	logger    *slog.Logger
	maxDepth  int
}

// Option configures a Table.
type Option func(*options)

// WithArena stores node data in a borrowed arena. The table never resets or
// frees it; the owner must outlive the table.
func WithArena(a *arena.Arena) Option {
	return func(o *options) {
		o.arena = a
	}
}

// WithArenaOptions configures the private arena the table creates when no
// arena is supplied.
func WithArenaOptions(opts ...arena.Option) Option {
	return func(o *options) {
		o.arenaOpts = append(o.arenaOpts, opts...)
	}
}

// WithLogger sets the logger. Nil discards log output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxDepth bounds indirection chains. Values <= 0 select DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// NewTable creates an empty node table stamped with a fresh context ID.
func NewTable(opts ...Option) *Table {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.maxDepth <= 0 {
		o.maxDepth = DefaultMaxDepth
	}

	t := &Table{
		id:       uid.Next(),
		arena:    o.arena,
		free:     container.NewRecyclableList[Handle](),
		live:     roaring.New(),
		maxDepth: o.maxDepth,
	}

	if t.arena == nil {
		t.arena = arena.New(o.arenaOpts...)
		t.ownsArena = true
	}

	t.logger = o.logger.With("context_id", t.id)

	return t
}

// ID returns the process-wide identity of this graph context.
func (t *Table) ID() uint64 {
	return t.id
}

// Arena returns the arena node data is stored in.
func (t *Table) Arena() *arena.Arena {
	return t.arena
}

// Len returns the number of live nodes.
func (t *Table) Len() int {
	return int(t.live.GetCardinality())
}

// Each calls fn with a weak handle to every node live at the time of the
// call, in ascending handle order, until fn returns false. fn may create or
// destroy nodes; nodes destroyed before their turn are skipped, and nodes
// created during the walk are not visited.
func (t *Table) Each(fn func(WeakHandle) bool) {
	live := t.live.ToArray()
	snapshot := make([]WeakHandle, len(live))
	for i, h := range live {
		snapshot[i] = NewWeakHandle(Handle(h), t.slots.Lookup(h).generation)
	}

	for _, w := range snapshot {
		if t.lookup(w) == nil {
			continue
		}
		if !fn(w) {
			return
		}
	}
}

// IsValid reports whether w still refers to the node it was taken for.
func (t *Table) IsValid(w WeakHandle) bool {
	return t.lookup(w) != nil
}

// Generation returns the current generation of h's slot, or 0 if the slot
// was never used.
func (t *Table) Generation(h Handle) uint32 {
	if s := t.slots.Lookup(uint32(h)); s != nil {
		return s.generation
	}
	return 0
}

// CreateValue creates a node owning size zeroed bytes. It panics with
// ErrClosed after Close, and if size is negative or exceeds 32 bits.
func (t *Table) CreateValue(size int) WeakHandle {
	if t.closed {
		panic(ErrClosed)
	}
	if _, err := conv.IntToUint32(size); err != nil {
		panic(fmt.Errorf("graph: value size: %w", err))
	}

	value := t.arena.Allocate(size)

	h, s := t.allocHandle()
	s.kind = kindValue
	s.value = value

	return NewWeakHandle(h, s.generation)
}

// CreateIndirection creates a node aliasing size bytes (or NoSize) at
// offset of source's value. The source is looked up in opts.Context.
func (t *Table) CreateIndirection(source WeakHandle, offset, size uint32, opts IndirectionOptions) (WeakHandle, error) {
	if t.closed {
		return WeakHandle{}, ErrClosed
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = t
	}
	if !ctx.IsValid(source) {
		return WeakHandle{}, fmt.Errorf("%w: source %s", ErrStaleReference, source)
	}
	if offset > MaxOffset {
		return WeakHandle{}, fmt.Errorf("%w: %d", ErrOffsetOverflow, offset)
	}

	traverses := ctx != t

	ind := arena.Alloc[Indirection](t.arena)
	if opts.Mutable {
		*ind = NewMutableIndirection(source, offset, size, traverses, opts.Dependency).Indirection
	} else {
		*ind = NewIndirection(source, offset, size, traverses)
	}

	h, s := t.allocHandle()
	s.kind = kindIndirection
	s.indirection = ind
	if traverses {
		s.peer = ctx
	}

	return NewWeakHandle(h, s.generation), nil
}

// Indirection returns the indirection stored for w.
func (t *Table) Indirection(w WeakHandle) (*Indirection, error) {
	s := t.lookup(w)
	if s == nil {
		return nil, t.stale(w)
	}
	if s.kind != kindIndirection {
		return nil, fmt.Errorf("%w: %s", ErrNotIndirection, w)
	}
	return s.indirection, nil
}

// Redirect rebinds the indirection w to newSource and newSize. The new
// source must be live in the same context as the old one.
func (t *Table) Redirect(w, newSource WeakHandle, newSize uint32) error {
	s := t.lookup(w)
	if s == nil {
		return t.stale(w)
	}
	if s.kind != kindIndirection {
		return fmt.Errorf("%w: %s", ErrNotIndirection, w)
	}

	ctx := t
	if s.peer != nil {
		ctx = s.peer
	}
	if !ctx.IsValid(newSource) {
		return fmt.Errorf("%w: source %s", ErrStaleReference, newSource)
	}

	s.indirection.Modify(newSource, newSize)
	return nil
}

// Destroy removes the node h. Its generation is bumped so existing weak
// handles become stale, and the handle is queued for reuse. Storage stays
// in the arena until Reset.
func (t *Table) Destroy(h Handle) error {
	if t.closed {
		return fmt.Errorf("%w: %s: %w", ErrStaleReference, h, ErrClosed)
	}

	s := t.slots.Lookup(uint32(h))
	if h.IsNil() || s == nil || s.kind == kindFree {
		return fmt.Errorf("%w: %s", ErrStaleReference, h)
	}

	t.release(h, s)
	t.free.PushFront(h)

	return nil
}

// Value resolves w to the bytes it denotes, following indirections across
// contexts. The slice aliases node storage.
func (t *Table) Value(w WeakHandle) ([]byte, error) {
	return t.resolve(w, 0)
}

// Write copies data into the bytes w denotes. Value nodes and mutable
// indirections accept writes; the returned handle is the dependency to
// notify (Nil for value nodes).
func (t *Table) Write(w WeakHandle, data []byte) (Handle, error) {
	s := t.lookup(w)
	if s == nil {
		return Nil, t.stale(w)
	}

	dep := Nil
	if s.kind == kindIndirection {
		if !s.indirection.IsMutable() {
			return Nil, fmt.Errorf("%w: %s", ErrNotWritable, w)
		}
		dep = s.indirection.AsMutable().Dependency()
	}

	dst, err := t.resolve(w, 0)
	if err != nil {
		return Nil, err
	}
	if len(dst) != len(data) {
		return Nil, &ErrSizeMismatch{Expected: len(dst), Actual: len(data)}
	}

	copy(dst, data)
	return dep, nil
}

// Reset destroys every node, bumps every used generation and releases the
// arena if the table owns it. Handles are reused from 1 upwards afterwards.
func (t *Table) Reset() {
	if t.closed {
		return
	}

	nodes := t.Len()

	for _, h := range t.live.ToArray() {
		t.release(Handle(h), t.slots.Lookup(h))
	}

	t.free.Clear()
	for h := t.next; h > Nil; h-- {
		t.free.PushFront(h)
	}

	if t.ownsArena {
		t.arena.Reset(nil)
	}

	t.logger.Debug("graph context reset", "nodes", nodes, "handles", uint32(t.next))
}

// Close destroys every node and releases the table's private storage.
// A closed table stays closed: no handle ever resolves again, creating nodes
// fails with ErrClosed, and indirections from other tables into it report
// ErrStaleReference. Close is idempotent.
func (t *Table) Close() {
	if t.closed {
		return
	}

	t.live.Clear()
	t.free.Close()
	t.slots.Reset()
	t.next = Nil
	t.closed = true

	if t.ownsArena {
		t.arena.Free()
	}

	t.logger.Debug("graph context closed")
}

// Closed reports whether Close was called.
func (t *Table) Closed() bool {
	return t.closed
}

func (t *Table) allocHandle() (Handle, *slot) {
	var h Handle
	if !t.free.Empty() {
		h = t.free.PopFront()
	} else {
		if t.next == math.MaxUint32 {
			panic(ErrHandlesExhausted)
		}
		t.next++
		h = t.next
	}

	s := t.slots.At(uint32(h))
	if s.generation == 0 {
		s.generation = 1
	} else {
		t.logger.Debug("recycled node slot", "handle", uint32(h), "generation", s.generation)
	}
	t.live.Add(uint32(h))

	return h, s
}

func (t *Table) release(h Handle, s *slot) {
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	s.kind = kindFree
	s.value = nil
	s.indirection = nil
	s.peer = nil

	t.live.Remove(uint32(h))
}

func (t *Table) lookup(w WeakHandle) *slot {
	if w.IsNil() {
		return nil
	}

	s := t.slots.Lookup(uint32(w.Handle()))
	if s == nil || s.kind == kindFree || s.generation != w.Seed() {
		return nil
	}
	return s
}

func (t *Table) stale(w WeakHandle) error {
	if t.closed {
		return fmt.Errorf("%w: %s: %w", ErrStaleReference, w, ErrClosed)
	}

	t.logger.Debug("stale node reference", "handle", uint32(w.Handle()), "generation", w.Seed())
	return fmt.Errorf("%w: %s", ErrStaleReference, w)
}

func (t *Table) resolve(w WeakHandle, depth int) ([]byte, error) {
	if depth > t.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrIndirectionDepth, depth)
	}

	s := t.lookup(w)
	if s == nil {
		return nil, t.stale(w)
	}

	if s.kind == kindValue {
		return s.value, nil
	}

	ind := s.indirection
	ctx := t
	if s.peer != nil {
		ctx = s.peer
	}

	base, err := ctx.resolve(ind.Source(), depth+1)
	if err != nil {
		return nil, err
	}

	start, err := conv.Uint32ToInt(ind.Offset())
	if err != nil {
		return nil, err
	}
	end := len(base)
	if size, ok := ind.Size(); ok {
		n, err := conv.Uint32ToInt(size)
		if err != nil {
			return nil, err
		}
		end = start + n
	}

	if start > len(base) || end > len(base) {
		return nil, fmt.Errorf("%w: [%d:%d] of %d bytes", ErrOutOfRange, start, end, len(base))
	}

	return base[start:end:end], nil
}
