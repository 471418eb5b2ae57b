package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_SequentialHandles(t *testing.T) {
	a := NewAllocator()

	h0 := a.Alloc()
	h1 := a.Alloc()
	h2 := a.Alloc()

	assert.Equal(t, Handle{Index: 0}, h0)
	assert.Equal(t, Handle{Index: 1}, h1)
	assert.Equal(t, Handle{Index: 2}, h2)
	assert.Equal(t, 3, a.Live())
}

func TestAllocator_ReusesFreedSlotWithNewGeneration(t *testing.T) {
	a := NewAllocator()
	a.Alloc()
	h1 := a.Alloc()
	a.Alloc()

	require.NoError(t, a.Free(h1))
	assert.False(t, a.IsAlive(h1))

	reused := a.Alloc()
	assert.Equal(t, Handle{Index: 1, Generation: 1}, reused)
	assert.True(t, a.IsAlive(reused))
	assert.False(t, a.IsAlive(h1), "stale handle must stay dead after slot reuse")
}

func TestAllocator_FreeIsLIFO(t *testing.T) {
	a := NewAllocator()
	h0 := a.Alloc()
	h1 := a.Alloc()

	require.NoError(t, a.Free(h0))
	require.NoError(t, a.Free(h1))

	assert.Equal(t, uint32(1), a.Alloc().Index)
	assert.Equal(t, uint32(0), a.Alloc().Index)
}

func TestAllocator_DoubleFree(t *testing.T) {
	a := NewAllocator()
	h := a.Alloc()
	require.NoError(t, a.Free(h))

	err := a.Free(h)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAlive))
}

func TestAllocator_FreeUnknownHandle(t *testing.T) {
	a := NewAllocator()
	err := a.Free(Handle{Index: 7})
	assert.ErrorIs(t, err, ErrNotAlive)
}

func TestHandle_BitsIndexMajor(t *testing.T) {
	reused := Handle{Index: 1, Generation: 1}
	later := Handle{Index: 5, Generation: 0}

	assert.Less(t, reused.Bits(), later.Bits(), "a recycled low slot sorts before later slots")
	assert.Equal(t, uint64(1)<<32|1, reused.Bits())
}

func TestHandle_FromBitsRoundTrip(t *testing.T) {
	h := Handle{Index: 42, Generation: 9}
	assert.Equal(t, h, FromBits(h.Bits()))
	assert.Equal(t, "42v9", h.String())
}

func TestAllocator_RetiresSlotAtMaxGeneration(t *testing.T) {
	a := NewAllocator()
	h := a.Alloc()
	a.generations[h.Index] = math.MaxUint32
	last := Handle{Index: h.Index, Generation: math.MaxUint32}

	require.NoError(t, a.Free(last))
	assert.Equal(t, 0, a.Live())

	next := a.Alloc()
	assert.Equal(t, Handle{Index: 1}, next, "exhausted slot must not be recycled")
	assert.False(t, a.IsAlive(last))
	assert.ErrorIs(t, a.Free(last), ErrNotAlive)
	assert.Equal(t, 1, a.Live())
}
