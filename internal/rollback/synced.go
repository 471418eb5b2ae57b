package rollback

import (
	"cmp"
	"iter"
	"slices"
	"sync"
)

// Synced guards a Registry with a single mutex.
//
// The backward swap scan moves a run of markers at once, so the whole
// structure is locked for every operation. All iterates over a copy taken
// under the lock and never observes a partial swap.
type Synced[M cmp.Ordered] struct {
	mu  sync.RWMutex
	reg *Registry[M]
}

// NewSynced creates an empty lock-guarded registry.
func NewSynced[M cmp.Ordered]() *Synced[M] {
	return &Synced[M]{reg: NewRegistry[M]()}
}

func (s *Synced[M]) register(m M) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.register(m)
}

// OrderOf returns the index of m. Panics with a *ContractError if m was never registered.
func (s *Synced[M]) OrderOf(m M) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.OrderOf(m)
}

// Lookup returns the index of m and whether m is registered.
func (s *Synced[M]) Lookup(m M) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Lookup(m)
}

// Contains reports whether m is registered.
func (s *Synced[M]) Contains(m M) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Contains(m)
}

// Len returns the number of registered markers.
func (s *Synced[M]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Len()
}

// All iterates over a snapshot of the markers in sort order.
// Each range over the sequence takes a fresh snapshot.
func (s *Synced[M]) All() iter.Seq[M] {
	return func(yield func(M) bool) {
		for _, m := range s.Markers() {
			if !yield(m) {
				return
			}
		}
	}
}

// Markers returns a copy of the sorted markers.
func (s *Synced[M]) Markers() []M {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reg.sorted)
}
