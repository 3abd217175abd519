package slab

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Heap is the per-size-class front end callers allocate and free
// through. It owns a single active descriptor slot; when that slot is
// empty (nil), allocation falls through to the size class's shared
// partial queue, and failing that, a brand-new superblock.
//
// One Heap per size class is the common case, but spec.md explicitly
// permits several heaps sharing a SizeClass — they simply compete for
// its partial queue.
type Heap struct {
	sc     *SizeClass
	active atomic.Pointer[Descriptor]
	logger *zap.Logger
}

// NewHeap creates a heap bound to sc. sc may be shared with other
// heaps.
func NewHeap(sc *SizeClass) *Heap {
	return &Heap{sc: sc, logger: sc.logger}
}

// SizeClass returns the size class this heap allocates from.
func (h *Heap) SizeClass() *SizeClass { return h.sc }

// takeActive atomically takes ownership of whatever is in the active
// slot (possibly nil) and leaves the slot empty, matching spec.md
// §4.4's "desc ← CAS(heap.active, null)".
func (h *Heap) takeActive() *Descriptor {
	return h.active.Swap(nil)
}
