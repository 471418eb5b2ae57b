package rollback

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynced_MatchesRegistry(t *testing.T) {
	s := NewSynced[uint64]()
	for _, v := range []uint64{5, 3, 8, 1} {
		s.register(v)
	}

	assert.Equal(t, []uint64{1, 3, 5, 8}, slices.Collect(s.All()))
	assert.Equal(t, 2, s.OrderOf(5))
	assert.Equal(t, 4, s.Len())
	assert.True(t, s.Contains(8))

	_, ok := s.Lookup(4)
	assert.False(t, ok)
}

func TestSynced_OrderOfUnregisteredPanics(t *testing.T) {
	s := NewSynced[uint64]()
	requireContractPanic(t, ErrCodeNotRegistered, func() {
		s.OrderOf(1)
	})

	// The read lock must have been released by the panic.
	s.register(1)
	assert.Equal(t, 0, s.OrderOf(1))
}

func TestSynced_ConcurrentReadersSeeSortedSnapshots(t *testing.T) {
	s := NewSynced[uint64]()
	const n = 500

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Descending values force a full shift on every registration.
		for i := n; i > 0; i-- {
			s.register(uint64(i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				snap := slices.Collect(s.All())
				assert.True(t, slices.IsSorted(snap), "snapshot must never observe a partial swap")
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, n, s.Len())
	assert.Equal(t, 0, s.OrderOf(1))
	assert.Equal(t, n-1, s.OrderOf(n))
}
