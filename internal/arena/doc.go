// Package arena provides a region allocator for graph node storage.
//
// # Allocation Policy
//
// An Arena owns a chain of blocks and a bump cursor into the most recently
// obtained one. Requests up to MinimumIncrement bytes are carved from the
// cursor; when the cursor cannot serve them a new block of the configured
// increment is obtained and becomes the active region. Larger requests get a
// dedicated block of exactly the requested size, linked into the chain
// without touching the cursor, so big values never fragment the small-object
// path.
//
// # Memory Management
//
// Allocations are never freed individually. Reset and Free release every
// block at once; all memory previously handed out becomes invalid.
//
// Blocks come from a BlockSource: the Go heap by default, or anonymous
// off-heap mappings (MmapSource). Arena memory is not scanned by the garbage
// collector, so Alloc only accepts types without Go pointers.
//
// # Concurrency Model
//
// An Arena is not safe for concurrent use. Callers serialize access, usually
// with the lock that already guards the owning subgraph.
//
// # Failure
//
// Failing to obtain a block is fatal: Allocate panics with an error wrapping
// ErrAllocationFailed. There is no partial-failure recovery at this layer.
package arena
