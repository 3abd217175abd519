package slab

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestSingleThreadFillAndDrain(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(true)))
	require.NoError(t, err)
	h := NewHeap(sc)

	max := int(sc.maxCount)
	ptrs := make([]unsafe.Pointer, 0, max)
	seen := make(map[unsafe.Pointer]bool, max)
	for i := 0; i < max; i++ {
		p, err := h.Alloc()
		require.NoError(t, err)
		require.False(t, seen[p], "Alloc returned the same address twice")
		seen[p] = true
		ptrs = append(ptrs, p)
	}

	// Once a descriptor goes FULL it is neither the active descriptor
	// nor on the partial queue — it's findable only via the pointers
	// already handed out, exactly as spec.md's active/partial tracking
	// only ever concerns itself with allocatable descriptors.
	require.Nil(t, h.active.Load())
	owner := descriptorOf(ptrs[0], testSBSize)
	require.Equal(t, stateFull, owner.loadAnchor().state)
	require.NoError(t, CheckConsistency(h))

	Free(ptrs[0])
	require.Same(t, owner, h.active.Load())
	require.Equal(t, statePartial, owner.loadAnchor().state)
	require.EqualValues(t, 1, owner.loadAnchor().count)

	for _, p := range ptrs[1:] {
		Free(p)
	}
	require.Nil(t, h.active.Load())
	require.NoError(t, CheckConsistency(h))
}

func TestAllocFromNewSBThenPartialQueueOnSecondHeap(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(false)))
	require.NoError(t, err)
	h1 := NewHeap(sc)
	h2 := NewHeap(sc)

	p1, err := h1.Alloc()
	require.NoError(t, err)
	require.NotNil(t, h1.active.Load())

	// h2 shares sc's partial queue but has no active descriptor of its
	// own yet, so its first Alloc must carve a brand new superblock
	// rather than reach into h1's active slot.
	p2, err := h2.Alloc()
	require.NoError(t, err)
	require.NotEqual(t, descriptorOf(p1, testSBSize), descriptorOf(p2, testSBSize))
}

func TestFreeMovesFullDescriptorToPartialQueueWhenActiveOccupied(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(false)))
	require.NoError(t, err)
	h := NewHeap(sc)

	max := int(sc.maxCount)
	first := make([]unsafe.Pointer, max)
	for i := range first {
		p, err := h.Alloc()
		require.NoError(t, err)
		first[i] = p
	}
	firstDesc := descriptorOf(first[0], testSBSize)
	require.Nil(t, h.active.Load())

	// A second allocation while the heap has no active descriptor opens
	// a second superblock and occupies h.active.
	second, err := h.Alloc()
	require.NoError(t, err)
	secondDesc := descriptorOf(second, testSBSize)
	require.Same(t, secondDesc, h.active.Load())

	// Freeing a slot from the now-stranded FULL descriptor can't win the
	// active slot (secondDesc holds it), so it must land on the partial
	// queue instead.
	Free(first[0])
	require.Equal(t, statePartial, firstDesc.loadAnchor().state)
	require.Same(t, secondDesc, h.active.Load())

	got := sc.getPartial()
	require.Same(t, firstDesc, got)
}

func TestStaleEmptyDescriptorInPartialQueueIsRetiredNotReturned(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(false)))
	require.NoError(t, err)
	h := NewHeap(sc)

	max := int(sc.maxCount)
	ptrs := make([]unsafe.Pointer, max)
	for i := range ptrs {
		p, err := h.Alloc()
		require.NoError(t, err)
		ptrs[i] = p
	}
	d := descriptorOf(ptrs[0], testSBSize)
	require.Nil(t, h.active.Load())

	// Open a second superblock so d, once freed back to PARTIAL, can't
	// reclaim the active slot and must queue on the partial list
	// instead — and when the last free drains it to EMPTY, free()'s own
	// stale-partial cleanup (spec.md §4.6) must retire it rather than
	// leave it sitting there for a future getPartial to hand out.
	other, err := h.Alloc()
	require.NoError(t, err)
	otherDesc := descriptorOf(other, testSBSize)

	for _, p := range ptrs {
		Free(p)
	}

	require.Same(t, otherDesc, h.active.Load())
	require.False(t, d.inUse.Load(), "stale EMPTY descriptor should have been retired, not left queued")
	require.Nil(t, sc.getPartial())
}

func TestDoubleFreeIsDetectedUnderDebug(t *testing.T) {
	sc, err := NewSizeClass(8, WithConfig(testConfig(true)))
	require.NoError(t, err)
	h := NewHeap(sc)

	p, err := h.Alloc()
	require.NoError(t, err)
	// A second live slot keeps the superblock from going EMPTY and being
	// retired (and unmapped) by the first Free.
	_, err = h.Alloc()
	require.NoError(t, err)
	Free(p)

	require.Panics(t, func() { Free(p) })
	require.True(t, Stopped())
	stopped.Store(false) // reset so later tests in this package aren't poisoned
}
