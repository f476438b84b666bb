package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMutable is the panic value for AsMutable on an immutable indirection.
	ErrNotMutable = errors.New("graph: indirection is not mutable")
	// ErrOffsetOverflow is reported when an offset does not fit in 30 bits.
	ErrOffsetOverflow = errors.New("graph: indirection offset exceeds 30 bits")
	// ErrHandlesExhausted is the panic value when the 32-bit handle space is used up.
	ErrHandlesExhausted = errors.New("graph: node handles exhausted")
	// ErrClosed is reported by a table after Close.
	ErrClosed = errors.New("graph: context closed")

	// ErrStaleReference is returned when a weak handle no longer matches its slot.
	ErrStaleReference = errors.New("graph: reference no longer valid")
	// ErrOutOfRange is returned when an indirection addresses bytes past its source value.
	ErrOutOfRange = errors.New("graph: indirection range exceeds source value")
	// ErrNotIndirection is returned when an indirection operation targets a value node.
	ErrNotIndirection = errors.New("graph: node is not an indirection")
	// ErrNotWritable is returned when writing through an immutable indirection.
	ErrNotWritable = errors.New("graph: node is not writable")
	// ErrIndirectionDepth is returned when an indirection chain is too deep or cyclic.
	ErrIndirectionDepth = errors.New("graph: indirection chain too deep")
)

// ErrSizeMismatch indicates a write whose length differs from the target range.
type ErrSizeMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("graph: size mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}
