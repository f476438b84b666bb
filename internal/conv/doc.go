// Package conv provides checked integer conversions.
//
// Arena sizes are ints while handles, offsets and generations are fixed-width
// unsigned integers. These helpers reject values that would wrap instead of
// silently truncating them.
//
// Conversions that are provably safe by construction (loop indices, values
// already masked to a bit field) use direct casts instead.
package conv
