// Package tagged packs a pointer and a one-bit tag into a single word.
//
// The tag lives in the low bit of the address, so the pointee type must be
// at least 2-byte aligned and not zero-sized. A tagged pointer still refers to a byte inside
// the pointee, which keeps the pointee reachable for the garbage collector.
//
// A nil pointer cannot carry a set tag: there is no object for the tagged
// address to point into. New and WithTag panic with ErrTaggedNil instead.
package tagged

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// ErrTaggedNil is the panic value for an attempt to set the tag on nil.
var ErrTaggedNil = errors.New("tagged: tag set on nil pointer")

// Pointer is a *T with a one-bit tag. The zero value is an untagged nil.
// Pointers compare equal with == iff both address and tag match.
type Pointer[T any] struct {
	word unsafe.Pointer
}

// New packs p and tag.
func New[T any](p *T, tag bool) Pointer[T] {
	var zero T
	if align := unsafe.Alignof(zero); align < 2 {
		panic(fmt.Sprintf("tagged: %s has alignment %d, need at least 2", reflect.TypeFor[T](), align))
	}
	if unsafe.Sizeof(zero) == 0 {
		panic(fmt.Sprintf("tagged: %s has zero size, no byte to tag into", reflect.TypeFor[T]()))
	}

	if p == nil {
		if tag {
			panic(ErrTaggedNil)
		}
		return Pointer[T]{}
	}

	word := unsafe.Pointer(p)
	if tag {
		word = unsafe.Add(word, 1)
	}
	return Pointer[T]{word: word}
}

// Get returns the pointer with the tag masked off.
func (p Pointer[T]) Get() *T {
	if p.Tag() {
		return (*T)(unsafe.Add(p.word, -1))
	}
	return (*T)(p.word)
}

// Tag returns the tag bit.
func (p Pointer[T]) Tag() bool {
	return uintptr(p.word)&1 == 1
}

// WithTag returns a copy carrying tag.
func (p Pointer[T]) WithTag(tag bool) Pointer[T] {
	return New(p.Get(), tag)
}

// IsNil reports whether the whole word is zero.
func (p Pointer[T]) IsNil() bool {
	return p.word == nil
}
