// Package resource implements a memory budget shared by arenas.
//
// Arenas consult the Controller before obtaining each block. Tracking uses
// an atomic counter; the optional hard limit is a weighted semaphore, and
// AcquireMemory fails fast with ErrMemoryLimitExceeded instead of blocking:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	a := arena.New(arena.WithMemoryAcquirer(rc))
//
// Several arenas may share one Controller to bound a whole graph runtime.
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
