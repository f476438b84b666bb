package container

import (
	"errors"
	"unsafe"

	"github.com/hupe1980/attrgraph/internal/arena"
	"github.com/hupe1980/attrgraph/internal/tagged"
)

// ErrEmptyList is the panic value for Front or PopFront on an empty list.
var ErrEmptyList = errors.New("container: list is empty")

type listNode[T any] struct {
	next  *listNode[T]
	value T
}

// RecyclableList is a singly linked LIFO list backed by an arena.
//
// Nodes are never returned to the arena individually. PopFront zeroes the
// node's value in place and moves the node to a spare chain; the next push
// takes it from there before asking the arena for new storage. Live and
// spare chains are linked through the same next field.
//
// T must not contain Go pointers because nodes live in arena memory.
type RecyclableList[T any] struct {
	arena    tagged.Pointer[arena.Arena] // tag: the list owns the arena
	front    *listNode[T]
	spare    *listNode[T]
	len      int
	spareLen int
}

// NewRecyclableList creates a list that owns a private arena using the
// minimum block increment. Close releases it.
func NewRecyclableList[T any]() *RecyclableList[T] {
	arena.MustBePointerFree[T]()

	a := arena.New(arena.WithIncrement(arena.MinimumIncrement))
	return &RecyclableList[T]{arena: tagged.New(a, true)}
}

// NewRecyclableListIn creates a list that borrows a. The list must not be
// used after a is reset or freed by its owner.
func NewRecyclableListIn[T any](a *arena.Arena) *RecyclableList[T] {
	arena.MustBePointerFree[T]()

	return &RecyclableList[T]{arena: tagged.New(a, false)}
}

// Arena returns the arena nodes are allocated from.
func (l *RecyclableList[T]) Arena() *arena.Arena {
	return l.arena.Get()
}

// OwnsArena reports whether Close releases the arena.
func (l *RecyclableList[T]) OwnsArena() bool {
	return l.arena.Tag()
}

// Empty reports whether the list has no live nodes.
func (l *RecyclableList[T]) Empty() bool {
	return l.front == nil
}

// Len returns the number of live nodes.
func (l *RecyclableList[T]) Len() int {
	return l.len
}

// SpareLen returns the number of recycled nodes waiting for reuse.
func (l *RecyclableList[T]) SpareLen() int {
	return l.spareLen
}

// Front returns the most recently pushed value. It panics with ErrEmptyList
// if the list is empty.
func (l *RecyclableList[T]) Front() T {
	if l.front == nil {
		panic(ErrEmptyList)
	}
	return l.front.value
}

// PushFront pushes v.
func (l *RecyclableList[T]) PushFront(v T) {
	*l.EmplaceFront() = v
}

// EmplaceFront pushes a zero value and returns a pointer to it for
// in-place initialization. The pointer is valid until the value is popped.
func (l *RecyclableList[T]) EmplaceFront() *T {
	n := l.take()
	n.next = l.front
	l.front = n
	l.len++
	return &n.value
}

// PopFront removes and returns the most recently pushed value. It panics
// with ErrEmptyList if the list is empty.
func (l *RecyclableList[T]) PopFront() T {
	n := l.front
	if n == nil {
		panic(ErrEmptyList)
	}

	l.front = n.next
	l.len--

	v := n.value
	l.recycle(n)
	return v
}

// Each calls fn for every live value, front to back, until fn returns false.
func (l *RecyclableList[T]) Each(fn func(T) bool) {
	for n := l.front; n != nil; n = n.next {
		if !fn(n.value) {
			return
		}
	}
}

// Clear moves every live node to the spare chain.
func (l *RecyclableList[T]) Clear() {
	for l.front != nil {
		n := l.front
		l.front = n.next
		l.recycle(n)
	}
	l.len = 0
}

// Close drops every node and releases the arena if the list owns it.
// A closed list is empty and may be reused.
func (l *RecyclableList[T]) Close() {
	l.front = nil
	l.spare = nil
	l.len = 0
	l.spareLen = 0

	if l.arena.Tag() {
		l.arena.Get().Free()
	}
}

func (l *RecyclableList[T]) recycle(n *listNode[T]) {
	var zero T
	n.value = zero
	n.next = l.spare
	l.spare = n
	l.spareLen++
}

func (l *RecyclableList[T]) take() *listNode[T] {
	if n := l.spare; n != nil {
		l.spare = n.next
		l.spareLen--
		n.next = nil
		return n
	}

	var zero listNode[T]
	p := l.arena.Get().AllocPointer(int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero)))
	return (*listNode[T])(p)
}
