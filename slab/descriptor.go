package slab

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Descriptor is the metadata record for one live superblock: its packed
// anchor, slot geometry, the superblock it owns, and the heap it is
// currently registered with. A Descriptor may be resident in the
// descriptor pool's free stack (poolNext chains it there), installed as
// some heap's active descriptor, or queued on a size class's partial
// queue — never more than one of the three at once (spec.md invariant
// 4). A FULL descriptor, or one a goroutine has taken out of a heap's
// active slot, is in none of them.
type Descriptor struct {
	heap     *Heap
	slotSize uintptr
	maxCount uint16
	sb       *Superblock
	cfg      Config
	logger   *zap.Logger

	anchorWord atomic.Uint64
	inUse      atomic.Bool

	// poolNext links this descriptor into the descriptor pool's free
	// stack. It is only meaningful while the descriptor is resident
	// there; every other state leaves it stale and unread.
	poolNext atomic.Pointer[Descriptor]
}

func (d *Descriptor) loadAnchor() anchor {
	return unpackAnchor(d.anchorWord.Load())
}

// casAnchor performs the packed-word CAS described in spec.md §4.3: an
// EMPTY anchor may never be CAS'd back to a non-EMPTY state, because
// EMPTY means the descriptor is mid-retirement and must not be
// re-armed by a racing allocator.
func (d *Descriptor) casAnchor(old, new anchor) bool {
	if old.state == stateEmpty && new.state != stateEmpty {
		fatal(d.logger, "anchor CAS would re-arm an EMPTY descriptor")
	}
	return d.anchorWord.CompareAndSwap(old.pack(), new.pack())
}
