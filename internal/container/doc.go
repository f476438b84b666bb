// Package container implements the allocation-aware containers used by the
// node table.
//
// RecyclableList is a LIFO list whose nodes live in an arena. Popped nodes
// move to a spare chain and are reused by later pushes, so steady-state
// push/pop traffic never touches the allocator.
//
// SegmentedArray is a growable array whose elements never move.
//
// Neither type is safe for concurrent use.
package container
