package mem

import (
	"unsafe"
)

// CacheLine is the alignment HeapSource-style callers use for block starts.
const CacheLine = 64

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte sits at an address divisible by align. align must be a power of two.
//
// The slice is carved from a slightly larger buffer; its capacity is clipped
// to size so appends never spill into the padding. The backing array stays
// alive as long as the returned slice does.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}

	if align <= 1 {
		return make([]byte, size)
	}

	if align&(align-1) != 0 {
		panic("mem: alignment must be a power of two")
	}

	buf := make([]byte, size+align-1)

	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf))) //nolint:gosec // unsafe is required for memory alignment
	offset := int((uintptr(align) - addr&uintptr(align-1)) & uintptr(align-1))

	return buf[offset : offset+size : offset+size]
}

// IsAligned reports whether the first byte of b is aligned to align.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 {
		return true
	}

	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))&uintptr(align-1) == 0 //nolint:gosec // unsafe is required for memory alignment
}
