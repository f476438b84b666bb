// Package attrgraph provides the identity, indirection and memory substrate
// of an incremental attribute graph runtime.
//
// A Context is one graph context. Nodes inside it are addressed by small
// integer handles that are recycled after destruction; every long-lived
// reference is therefore a WeakHandle carrying the generation of the slot
// it was taken for, and goes stale as soon as the slot is reused.
//
// # Quick Start
//
//	ctx := attrgraph.NewContext()
//	defer ctx.Close()
//
//	point := ctx.CreateValue(16) // two float64 fields
//
//	// A view aliases the second field without copying it.
//	y, _ := ctx.CreateView(point, 8, 8, attrgraph.ViewOptions{})
//
//	b, _ := ctx.Value(y)
//
// # Views
//
// A view (an indirection node) owns no storage. It exposes a byte range of
// another node's value, optionally in another Context. Mutable views accept
// writes and report the dependency the caller must notify.
//
// # Memory
//
// Node storage lives in an arena that is released in bulk by Reset or
// Close. WithOffHeap moves it out of the Go heap and WithMemoryLimit caps it.
//
// # Concurrency
//
// A Context is not safe for concurrent use. Guard it with the lock that
// protects the owning subgraph. Context IDs are assigned atomically and are
// unique for the lifetime of the process.
package attrgraph
