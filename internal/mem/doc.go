// Package mem provides aligned heap allocation.
//
// Arena blocks obtained from the Go heap go through AllocAligned so that the
// first node carved from a fresh block starts on a cache line.
package mem
