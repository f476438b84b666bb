// Package graph defines node identity and indirection for the attribute
// graph runtime.
//
// # Handles
//
// A Handle is a non-zero 32-bit slot number; Nil is reserved. Handle values
// are recycled after a node is destroyed, so long-lived references use a
// WeakHandle, which pairs the handle with the generation ("seed") of the
// slot at the time the reference was taken. A reference is valid only while
// the slot still carries that generation.
//
// # Indirection
//
// An Indirection node owns no value. It exposes a byte range of another
// node's value, possibly in a different graph context. Its flags, offset and
// size share one packed 64-bit word:
//
//	bit  0      mutable
//	bit  1      traverses graph contexts
//	bits 2..31  offset (30 bits)
//	bits 32..63 size (NoSize means "to the end of the source value")
//
// A MutableIndirection additionally records the forward dependency that must
// be notified when a write goes through it.
//
// # Table
//
// Table is the reference node table: it assigns handles, keeps generations,
// stores values and indirections in an arena and resolves weak references.
// Staleness is reported as ErrStaleReference; precondition violations such
// as AsMutable on an immutable indirection panic.
//
// Nothing in this package is safe for concurrent use.
package graph
