package slab

import "unsafe"

// Free returns ptr, previously issued by some Heap's Alloc, to its
// owning descriptor. Freeing a pointer that was never issued by this
// package, or freeing it twice, is undefined behavior; with
// Config.Debug enabled the sentinel byte catches most double frees and
// aborts via fatal rather than corrupting the free chain silently.
//
// This implements spec.md §4.6: the slot's superblock header reveals
// its descriptor in O(1), no search, regardless of which Heap the
// pointer came from.
func Free(ptr unsafe.Pointer) {
	sbSize := globalSBSize.Load()
	if sbSize == 0 {
		fatal(nil, "free called before any allocation ever happened in this process")
	}
	d := descriptorOf(ptr, sbSize)
	if d == nil {
		fatal(nil, "free: pointer does not resolve to a descriptor")
	}

	if d.cfg.Debug {
		if readDebugByte(ptr) == debugFreeByte {
			fatal(d.logger, "double free detected")
		}
		writeDebugByte(ptr, debugFreeByte)
	}

	idx := d.sb.slotIndex(d.cfg, d.slotSize, ptr)

	for {
		old := d.loadAnchor()
		writeNextIndex(ptr, old.avail)

		newCount := old.count + 1
		newState := old.state
		if old.state == stateFull {
			newState = statePartial
		}
		if newCount == d.maxCount {
			newState = stateEmpty
		}

		next := anchor{avail: idx, count: newCount, state: newState, tag: old.tag}.step()
		if !d.casAnchor(old, next) {
			continue
		}

		h := d.heap
		switch {
		case next.state == stateEmpty:
			if h.active.CompareAndSwap(d, nil) {
				h.sc.pool.Retire(d)
			} else {
				h.sc.removeEmptyPartials(2)
			}
		case old.state == stateFull && next.state == statePartial:
			if !h.active.CompareAndSwap(nil, d) {
				h.sc.putPartial(d)
			}
		}
		return
	}
}
