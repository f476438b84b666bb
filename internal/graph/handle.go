package graph

import "fmt"

// Handle identifies a node within a node table. Zero is Nil.
type Handle uint32

// Nil is the reserved "no node" handle.
const Nil Handle = 0

// IsNil reports whether h is Nil.
func (h Handle) IsNil() bool {
	return h == Nil
}

func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint32(h))
}

// WeakHandle is a Handle plus the slot generation it was taken at.
// Two weak handles are equal iff both handle and seed match.
type WeakHandle struct {
	handle Handle
	seed   uint32
}

// NewWeakHandle pairs h with the generation seed.
func NewWeakHandle(h Handle, seed uint32) WeakHandle {
	return WeakHandle{handle: h, seed: seed}
}

// Handle returns the referenced handle.
func (w WeakHandle) Handle() Handle {
	return w.handle
}

// Seed returns the generation captured when the reference was taken.
func (w WeakHandle) Seed() uint32 {
	return w.seed
}

// IsNil reports whether w refers to no node.
func (w WeakHandle) IsNil() bool {
	return w.handle.IsNil()
}

func (w WeakHandle) String() string {
	return fmt.Sprintf("%s@%d", w.handle, w.seed)
}
