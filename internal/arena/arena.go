package arena

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/attrgraph/internal/mem"
)

// ErrAllocationFailed wraps every fatal failure to obtain a block.
var ErrAllocationFailed = errors.New("arena: allocation failed")

const (
	// MinimumIncrement is the smallest block size the arena obtains for the
	// bump region. It is also the large-allocation threshold: requests above
	// it get a dedicated block.
	MinimumIncrement = 0x400
	// DefaultIncrement is the bump-region block size used when none is configured.
	DefaultIncrement = 0x2000
	// Alignment is the pointer-size alignment of every bump allocation.
	Alignment = int(unsafe.Sizeof(uintptr(0)))
)

// Stats tracks arena memory usage.
type Stats struct {
	BlocksObtained uint64 // Historical: blocks ever obtained
	ActiveBlocks   uint64 // Current: blocks held in the chain
	BytesReserved  uint64 // Current: bytes held in the chain
	BytesUsed      uint64 // Current: bytes requested by allocations
	BytesWasted    uint64 // Current: alignment padding
	TotalAllocs    uint64 // Historical: allocations served
}

// Arena is a region allocator. See the package documentation for the policy.
type Arena struct {
	increment int
	source    BlockSource
	acquirer  MemoryAcquirer
	blocks    [][]byte
	free      []byte // active region; len(free) is the remaining capacity
	stats     Stats
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithIncrement sets the bump-region block size. Zero selects
// DefaultIncrement; values below MinimumIncrement are raised to it.
func WithIncrement(n int) Option {
	return func(a *Arena) {
		a.increment = n
	}
}

// WithBlockSource sets where blocks come from. The default is HeapSource.
func WithBlockSource(src BlockSource) Option {
	return func(a *Arena) {
		if src != nil {
			a.source = src
		}
	}
}

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithInline seeds the bump region with caller-owned storage. The arena
// never releases it; it is simply dropped on Reset.
func WithInline(buf []byte) Option {
	return func(a *Arena) {
		a.free = alignRegion(buf)
	}
}

// New creates a new Arena.
func New(opts ...Option) *Arena {
	a := &Arena{source: HeapSource{}}

	for _, opt := range opts {
		opt(a)
	}

	a.increment = normalizeIncrement(a.increment)

	return a
}

func normalizeIncrement(n int) int {
	if n <= 0 {
		return DefaultIncrement
	}
	return max(n, MinimumIncrement)
}

// Increment returns the effective bump-region block size.
func (a *Arena) Increment() int {
	return a.increment
}

// Remaining returns the bytes left in the active region.
func (a *Arena) Remaining() int {
	return len(a.free)
}

// Allocate returns size zeroed bytes that live until the next Reset or Free.
// The returned slice is aligned to Alignment and has len == cap == size.
// It returns nil for size <= 0.
func (a *Arena) Allocate(size int) []byte {
	if size <= 0 {
		return nil
	}

	if size <= len(a.free) {
		return a.bump(size)
	}

	if size > MinimumIncrement {
		block := a.obtain(size)
		a.stats.BytesUsed += uint64(size)
		a.stats.TotalAllocs++
		return block
	}

	a.free = a.obtain(a.increment)
	return a.bump(size)
}

func (a *Arena) bump(size int) []byte {
	n := min(alignUp(size), len(a.free))

	p := a.free[:size:size]
	a.free = a.free[n:]
	clear(p)

	a.stats.BytesUsed += uint64(size)
	a.stats.BytesWasted += uint64(n - size)
	a.stats.TotalAllocs++

	return p
}

func (a *Arena) obtain(size int) []byte {
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(size)); err != nil {
			panic(fmt.Errorf("%w: reserve %d bytes: %w", ErrAllocationFailed, size, err))
		}
	}

	block, err := a.source.Obtain(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		panic(fmt.Errorf("%w: obtain %d-byte block: %w", ErrAllocationFailed, size, err))
	}

	if !mem.IsAligned(block, Alignment) {
		a.source.Release(block)
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		panic(fmt.Errorf("%w: %T returned a block not aligned to %d bytes", ErrAllocationFailed, a.source, Alignment))
	}

	a.blocks = append(a.blocks, block)

	a.stats.BlocksObtained++
	a.stats.ActiveBlocks++
	a.stats.BytesReserved += uint64(len(block))

	return block
}

// AllocPointer allocates size bytes with at most Alignment alignment and
// returns a pointer to them, or nil for size <= 0.
//
// The memory is not scanned by the garbage collector. Callers storing Go
// pointers in it must keep the pointees alive by other means.
func (a *Arena) AllocPointer(size, align int) unsafe.Pointer {
	if align > Alignment {
		panic(fmt.Sprintf("arena: alignment %d exceeds %d", align, Alignment))
	}

	b := a.Allocate(size)
	if b == nil {
		return nil
	}

	return unsafe.Pointer(unsafe.SliceData(b)) //nolint:gosec // unsafe is required for arena implementation
}

// Reset releases every block in the chain and restarts the bump region over
// inline, or over nothing when inline is nil so the next Allocate obtains a
// fresh block. The start of inline is rounded up to Alignment and its
// capacity shrunk by the same amount.
//
// All memory handed out before Reset becomes invalid.
func (a *Arena) Reset(inline []byte) {
	for _, block := range a.blocks {
		a.source.Release(block)
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(len(block)))
		}
	}

	clear(a.blocks)
	a.blocks = a.blocks[:0]
	a.free = alignRegion(inline)

	a.stats.ActiveBlocks = 0
	a.stats.BytesReserved = 0
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
}

// Free releases every block, like Reset(nil). The arena stays usable.
func (a *Arena) Free() {
	a.Reset(nil)
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return a.stats
}

// Usage returns the memory usage percentage.
func (a *Arena) Usage() float64 {
	if a.stats.BytesReserved == 0 {
		return 0
	}
	return float64(a.stats.BytesUsed) / float64(a.stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	return fmt.Sprintf(
		"Arena{blocks: %d, reserved: %.2f KB, used: %.2f KB, wasted: %d B, usage: %.1f%%, allocs: %d}",
		a.stats.ActiveBlocks,
		float64(a.stats.BytesReserved)/1024,
		float64(a.stats.BytesUsed)/1024,
		a.stats.BytesWasted,
		a.Usage(),
		a.stats.TotalAllocs,
	)
}

func alignUp(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

func alignRegion(buf []byte) []byte {
	if len(buf) == 0 {
		return nil
	}

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // address only, never dereferenced
	pad := int((uintptr(Alignment) - addr%uintptr(Alignment)) % uintptr(Alignment))
	if pad >= len(buf) {
		return nil
	}

	return buf[pad:len(buf):len(buf)]
}
