package entity

import "fmt"

// Handle identifies an entity slot and its generation.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Bits returns the handle packed as index<<32 | generation.
func (h Handle) Bits() uint64 {
	return uint64(h.Index)<<32 | uint64(h.Generation)
}

// FromBits unpacks a value produced by Bits.
func FromBits(bits uint64) Handle {
	return Handle{
		Index:      uint32(bits >> 32),
		Generation: uint32(bits),
	}
}

// String renders the handle as index "v" generation (e.g. "3v1").
func (h Handle) String() string {
	return fmt.Sprintf("%dv%d", h.Index, h.Generation)
}
