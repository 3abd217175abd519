package slab

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckConsistencyOnFreshHeap(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(true)))
	require.NoError(t, err)
	h := NewHeap(sc)
	require.NoError(t, CheckConsistency(h))
}

func TestCheckConsistencyAfterPartialAllocation(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(true)))
	require.NoError(t, err)
	h := NewHeap(sc)

	var ptrs []unsafe.Pointer
	for i := 0; i < int(sc.maxCount)/2; i++ {
		p, err := h.Alloc()
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.NoError(t, CheckConsistency(h))

	for _, p := range ptrs[:len(ptrs)/2] {
		Free(p)
	}
	require.NoError(t, CheckConsistency(h))
}

func TestCheckDescriptorCatchesBadFreeChainLength(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(false)))
	require.NoError(t, err)
	h := NewHeap(sc)
	_, err = h.Alloc()
	require.NoError(t, err)

	d := h.active.Load()
	require.NotNil(t, d)

	// Corrupt the anchor's count without touching the free chain itself.
	a := d.loadAnchor()
	bad := anchor{avail: a.avail, count: a.count + 1, state: stateFor(a.count+1, d.maxCount), tag: a.tag}
	d.anchorWord.Store(bad.pack())

	err = checkDescriptor(d)
	require.Error(t, err)
}
