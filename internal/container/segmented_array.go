package container

const (
	// segmentBits determines the size of each segment.
	// 10 bits = 1024 items per segment.
	segmentBits = 10
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// SegmentedArray is a growable array addressed by uint32 index.
// Items live in fixed-size segments that are allocated on first touch and
// never move, so pointers returned by At stay valid until Reset.
type SegmentedArray[T any] struct {
	segments []*segment[T]
}

type segment[T any] struct {
	items [segmentSize]T
}

// At returns a pointer to the item at index, growing the array if needed.
func (sa *SegmentedArray[T]) At(index uint32) *T {
	segIdx := int(index >> segmentBits)

	if segIdx >= len(sa.segments) {
		grown := make([]*segment[T], segIdx+1)
		copy(grown, sa.segments)
		sa.segments = grown
	}

	seg := sa.segments[segIdx]
	if seg == nil {
		seg = &segment[T]{}
		sa.segments[segIdx] = seg
	}

	return &seg.items[index&segmentMask]
}

// Lookup returns a pointer to the item at index, or nil if its segment was
// never allocated.
func (sa *SegmentedArray[T]) Lookup(index uint32) *T {
	segIdx := int(index >> segmentBits)
	if segIdx >= len(sa.segments) {
		return nil
	}

	seg := sa.segments[segIdx]
	if seg == nil {
		return nil
	}

	return &seg.items[index&segmentMask]
}

// Reset drops every segment.
func (sa *SegmentedArray[T]) Reset() {
	sa.segments = nil
}
