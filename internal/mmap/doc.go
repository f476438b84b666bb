// Package mmap provides anonymous memory mappings for off-heap storage.
//
// # Overview
//
// MapAnon reserves read-write memory directly from the operating system.
// The memory is not managed by the Go garbage collector: it is neither
// scanned nor moved, and it stays reserved until Close is called. The arena
// allocator uses it as a block source so that large node tables do not add
// to GC pressure.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches the bytes after Close returns.
package mmap
