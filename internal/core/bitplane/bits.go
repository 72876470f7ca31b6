// Package bitplane splits integer bitmask images into one plane per active bit
// and measures each plane with connected-component labeling.
//
// Everything here is pure: no logging, no I/O and no failure modes for
// well-formed input. Callers own any batching or cancellation.
package bitplane

import (
	"math/bits"
	"slices"
)

// Decompose returns the ascending powers of two that sum to v.
// Decompose(0) is empty.
func Decompose(v uint64) []uint64 {
	out := make([]uint64, 0, bits.OnesCount64(v))
	for k := uint64(1); k != 0 && k <= v; k <<= 1 {
		if k&v != 0 {
			out = append(out, k)
		}
	}
	return out
}

// Universe is the sorted set of bit values active in one image.
// The zero value is an empty universe. Universe is immutable once built.
type Universe struct {
	bits []uint64
}

// NewUniverse unions the decomposition of every value, deduplicated and sorted
// ascending. Input order and repeated values do not change the result.
func NewUniverse(values []uint64) Universe {
	var mask uint64
	for _, v := range values {
		mask |= v
	}
	return Universe{bits: Decompose(mask)}
}

// Bits returns a copy of the bit values in ascending order.
func (u Universe) Bits() []uint64 { return slices.Clone(u.bits) }

// Len is the number of layers the universe indexes.
func (u Universe) Len() int { return len(u.bits) }

// At returns the bit value stored at layer position i.
func (u Universe) At(i int) uint64 { return u.bits[i] }

// Index returns the layer position of bit, or -1 when bit is not in the universe.
func (u Universe) Index(bit uint64) int {
	i, ok := slices.BinarySearch(u.bits, bit)
	if !ok {
		return -1
	}
	return i
}
