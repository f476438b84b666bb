// Package uid hands out process-wide identifiers for long-lived runtime
// entities such as graph contexts and subgraphs.
//
// Identifiers are independent of memory addresses, so two entities never
// compare equal just because one reused the other's storage.
package uid

import "sync/atomic"

var global Generator

// Next returns the next process-wide identifier. The first value is 1.
//
// Next is safe for concurrent use. The returned value carries no ordering
// relationship with other shared state; callers that need happens-before
// edges must synchronize separately.
func Next() uint64 {
	return global.Next()
}

// Generator is an independent identifier sequence.
// The zero value is ready to use and yields 1 first.
type Generator struct {
	last atomic.Uint64
}

// Next returns the next identifier of the sequence.
func (g *Generator) Next() uint64 {
	return g.last.Add(1)
}

// Last returns the most recently issued identifier, or 0 if none was issued.
func (g *Generator) Last() uint64 {
	return g.last.Load()
}
