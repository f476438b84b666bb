package attrgraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/attrgraph/internal/graph"
)

var (
	// ErrInvalidReference is returned when a weak handle no longer denotes a
	// live node, or when an indirection does not fit its source.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotWritable is returned when writing through an immutable view.
	ErrNotWritable = errors.New("node is not writable")
	// ErrNotView is returned when a view operation targets a value node.
	ErrNotView = errors.New("node is not a view")
	// ErrClosed is returned by a closed context, and when a view's source
	// context has been closed.
	ErrClosed = errors.New("context is closed")
)

// ErrSizeMismatch indicates a write whose length differs from its target.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type ErrSizeMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrSizeMismatch) Error() string {
	return fmt.Sprintf("size mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

func (e *ErrSizeMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, graph.ErrClosed) {
		if errors.Is(err, graph.ErrStaleReference) {
			return fmt.Errorf("%w: %w: %w", ErrInvalidReference, ErrClosed, err)
		}
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	if errors.Is(err, graph.ErrStaleReference) ||
		errors.Is(err, graph.ErrOutOfRange) ||
		errors.Is(err, graph.ErrIndirectionDepth) ||
		errors.Is(err, graph.ErrOffsetOverflow) {
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	if errors.Is(err, graph.ErrNotWritable) {
		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}
	if errors.Is(err, graph.ErrNotIndirection) {
		return fmt.Errorf("%w: %w", ErrNotView, err)
	}

	var sm *graph.ErrSizeMismatch
	if errors.As(err, &sm) {
		return &ErrSizeMismatch{Expected: sm.Expected, Actual: sm.Actual, cause: err}
	}

	return err
}
