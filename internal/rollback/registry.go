package rollback

import (
	"cmp"
	"iter"
	"slices"
)

// Reader is the read-only view of a marker registry.
type Reader[M cmp.Ordered] interface {
	OrderOf(m M) int
	Lookup(m M) (int, bool)
	Contains(m M) bool
	Len() int
	All() iter.Seq[M]
}

// Registry provides stable ordering of markers.
//
// sorted is kept in non-decreasing order and order[m] is the position of m
// in sorted. Entries are never removed: markers of despawned entities keep
// their position.
//
// M must be totally ordered; floating point NaN markers are not supported.
//
// Thread-safety: Registry is NOT safe for concurrent use. See Synced.
type Registry[M cmp.Ordered] struct {
	order  map[M]int
	sorted []M
}

// NewRegistry creates an empty registry.
func NewRegistry[M cmp.Ordered]() *Registry[M] {
	return &Registry[M]{
		order: make(map[M]int),
	}
}

// register adds m and restores sort order with a backward swap scan.
// Returns the index assigned to m.
//
// Panics with a *ContractError if m is already registered; the registry is
// left unchanged in that case.
func (r *Registry[M]) register(m M) int {
	if _, ok := r.order[m]; ok {
		panic(newDuplicateMarkerError(m))
	}

	// sorted is already sorted, and m lands at the back most of the time
	r.sorted = append(r.sorted, m)

	i := len(r.sorted) - 1
	for ; i > 0; i-- {
		if r.sorted[i] >= r.sorted[i-1] {
			break
		}
		r.sorted[i], r.sorted[i-1] = r.sorted[i-1], r.sorted[i]
		r.order[r.sorted[i]] = i
	}
	r.order[m] = i

	return i
}

// OrderOf returns the unique, order-stable index of m.
//
// Panics with a *ContractError if m was never registered.
func (r *Registry[M]) OrderOf(m M) int {
	idx, ok := r.order[m]
	if !ok {
		panic(newNotRegisteredError(m))
	}
	return idx
}

// Lookup returns the index of m and whether m is registered.
func (r *Registry[M]) Lookup(m M) (int, bool) {
	idx, ok := r.order[m]
	return idx, ok
}

// Contains reports whether m is registered.
func (r *Registry[M]) Contains(m M) bool {
	_, ok := r.order[m]
	return ok
}

// Len returns the number of registered markers.
func (r *Registry[M]) Len() int {
	return len(r.sorted)
}

// All iterates over every marker ever registered, in sort order, including
// markers whose entity has since been despawned. The sequence can be ranged
// over any number of times.
func (r *Registry[M]) All() iter.Seq[M] {
	return func(yield func(M) bool) {
		for _, m := range r.sorted {
			if !yield(m) {
				return
			}
		}
	}
}

// Markers returns a copy of the sorted markers.
func (r *Registry[M]) Markers() []M {
	return slices.Clone(r.sorted)
}
