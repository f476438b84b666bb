package graph

import "unsafe"

const (
	// MaxOffset is the largest offset an indirection can encode.
	MaxOffset = 1<<30 - 1
	// NoSize marks an indirection without an explicit size.
	NoSize uint32 = 0xffff
)

// MutableIndirection must not outgrow Indirection; AsMutable converts pointers between them.
var _ [unsafe.Sizeof(Indirection{}) - unsafe.Sizeof(MutableIndirection{})]struct{}

const (
	mutableBit   = 1 << 0
	traversesBit = 1 << 1
	offsetShift  = 2
	offsetMask   = MaxOffset << offsetShift
	sizeShift    = 32
)

// Indirection aliases a byte range of another node's value.
//
// The dependency of a mutable indirection is stored here rather than in
// MutableIndirection, so a copied Indirection still carries it.
type Indirection struct {
	source     WeakHandle
	info       uint64
	dependency Handle // Nil unless mutable
}

// MutableIndirection is an Indirection that writes may go through.
// It must not gain fields of its own: AsMutable converts *Indirection to it.
type MutableIndirection struct {
	Indirection
}

// NewIndirection returns an immutable indirection. size may be NoSize.
// It panics with ErrOffsetOverflow if offset exceeds MaxOffset.
func NewIndirection(source WeakHandle, offset, size uint32, traversesContexts bool) Indirection {
	if offset > MaxOffset {
		panic(ErrOffsetOverflow)
	}

	info := uint64(offset)<<offsetShift | uint64(size)<<sizeShift
	if traversesContexts {
		info |= traversesBit
	}

	return Indirection{source: source, info: info}
}

// NewMutableIndirection returns a mutable indirection whose writes notify
// dependency.
func NewMutableIndirection(source WeakHandle, offset, size uint32, traversesContexts bool, dependency Handle) MutableIndirection {
	ind := NewIndirection(source, offset, size, traversesContexts)
	ind.info |= mutableBit
	ind.dependency = dependency

	return MutableIndirection{Indirection: ind}
}

// Source returns the aliased node.
func (ind *Indirection) Source() WeakHandle {
	return ind.source
}

// Offset returns the byte offset into the source value.
func (ind *Indirection) Offset() uint32 {
	return uint32((ind.info & offsetMask) >> offsetShift)
}

// Size returns the length of the aliased range. ok is false when no
// explicit size is stored and the range spans to the end of the source.
func (ind *Indirection) Size() (size uint32, ok bool) {
	size = uint32(ind.info >> sizeShift)
	if size == NoSize {
		return 0, false
	}
	return size, true
}

// TraversesGraphContexts reports whether the source lives in another context.
func (ind *Indirection) TraversesGraphContexts() bool {
	return ind.info&traversesBit != 0
}

// IsMutable reports whether the indirection is a MutableIndirection.
func (ind *Indirection) IsMutable() bool {
	return ind.info&mutableBit != 0
}

// Packed returns the flags/offset/size word in its stored layout.
func (ind *Indirection) Packed() uint64 {
	return ind.info
}

// Modify rebinds the indirection to newSource and newSize (which may be
// NoSize). Offset and flags are unchanged.
func (ind *Indirection) Modify(newSource WeakHandle, newSize uint32) {
	ind.source = newSource
	ind.info = ind.info&^(uint64(0xffffffff)<<sizeShift) | uint64(newSize)<<sizeShift
}

// AsMutable returns the mutable view of ind, sharing its storage. It panics
// with ErrNotMutable unless IsMutable is true; callers check the flag first.
func (ind *Indirection) AsMutable() *MutableIndirection {
	if !ind.IsMutable() {
		panic(ErrNotMutable)
	}
	return (*MutableIndirection)(unsafe.Pointer(ind)) //nolint:gosec // MutableIndirection has the exact layout of Indirection
}

// Dependency returns the node to notify when a write goes through.
func (m *MutableIndirection) Dependency() Handle {
	return m.Indirection.dependency
}
