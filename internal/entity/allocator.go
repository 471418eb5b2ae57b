package entity

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotAlive is returned when freeing a handle that is not currently allocated.
var ErrNotAlive = errors.New("entity not alive")

// Allocator hands out entity handles and recycles freed slots.
//
// Thread-safety: Allocator is NOT safe for concurrent use. It is owned by a
// single session and only touched from that session's flush path.
type Allocator struct {
	generations []uint32 // current generation per slot
	alive       []bool
	free        []uint32 // LIFO stack of freed slot indices
	live        int
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Alloc returns a fresh handle, reusing the most recently freed slot if any.
func (a *Allocator) Alloc() Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.alive[idx] = true
		a.live++
		return Handle{Index: idx, Generation: a.generations[idx]}
	}

	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	a.alive = append(a.alive, true)
	a.live++
	return Handle{Index: idx, Generation: 0}
}

// Free releases a handle's slot. The slot's generation is bumped so the
// next handle for that slot compares unequal to h.
//
// A slot whose generation would wrap is retired instead of recycled, so a
// handle is never handed out twice.
func (a *Allocator) Free(h Handle) error {
	if !a.IsAlive(h) {
		return fmt.Errorf("free %s: %w", h, ErrNotAlive)
	}
	a.alive[h.Index] = false
	a.live--
	if a.generations[h.Index] == math.MaxUint32 {
		return nil
	}
	a.generations[h.Index]++
	a.free = append(a.free, h.Index)
	return nil
}

// IsAlive reports whether h refers to a currently allocated entity.
func (a *Allocator) IsAlive(h Handle) bool {
	if int(h.Index) >= len(a.generations) {
		return false
	}
	return a.alive[h.Index] && a.generations[h.Index] == h.Generation
}

// Live returns the number of allocated entities.
func (a *Allocator) Live() int {
	return a.live
}
