package arena

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

var pointerFree sync.Map // reflect.Type -> bool

// Alloc allocates a zeroed T in the arena. T must not contain Go pointers.
func Alloc[T any](a *Arena) *T {
	MustBePointerFree[T]()

	var zero T
	p := a.AllocPointer(int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero)))
	if p == nil {
		return new(T)
	}
	return (*T)(p)
}

// IsPointerFree reports whether T holds no Go pointers and can therefore
// live in memory the garbage collector does not scan.
func IsPointerFree[T any]() bool {
	t := reflect.TypeFor[T]()
	if v, ok := pointerFree.Load(t); ok {
		return v.(bool)
	}

	free := !hasPointers(t)
	pointerFree.Store(t, free)
	return free
}

// MustBePointerFree panics if T contains Go pointers.
func MustBePointerFree[T any]() {
	if !IsPointerFree[T]() {
		panic(fmt.Sprintf("arena: %s contains Go pointers", reflect.TypeFor[T]()))
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
