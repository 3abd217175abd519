package slab

import "unsafe"

// Alloc returns a pointer to a fresh, slot-sized region, or
// ErrOutOfMemory if the OS page allocator refused memory. It implements
// spec.md §4.4/§4.5: try the heap's active descriptor, then the size
// class's partial queue, then fall back to a brand-new superblock.
func (h *Heap) Alloc() (unsafe.Pointer, error) {
	for {
		addr, retry, err := h.allocFromActiveOrPartial()
		if err != nil {
			return nil, err
		}
		if addr != nil {
			return addr, nil
		}
		if retry {
			continue
		}
		return h.allocFromNewSB()
	}
}

// allocFromActiveOrPartial implements spec.md §4.4. retry is true when
// the descriptor we pulled turned out to be stale-EMPTY and was
// retired — the caller should go back to the top and try again, since
// a fresh active/partial descriptor may now be available.
func (h *Heap) allocFromActiveOrPartial() (addr unsafe.Pointer, retry bool, err error) {
	d := h.takeActive()
	if d == nil {
		d = h.sc.getPartial()
		if d == nil {
			return nil, false, nil
		}
	}

	for {
		old := d.loadAnchor()
		if old.state == stateEmpty {
			h.sc.pool.Retire(d)
			return nil, true, nil
		}
		if old.state != statePartial || old.count == 0 {
			fatal(h.logger, "descriptor taken from active/partial was not PARTIAL")
		}

		slot := d.sb.slotAddr(d.cfg, d.slotSize, old.avail)
		next := readNextIndex(slot)
		newCount := old.count - 1
		newState := stateFor(newCount, d.maxCount)
		if newCount > 0 && next >= d.maxCount {
			fatal(h.logger, "corrupt free chain: next index out of range")
		}

		next64 := anchor{avail: next, count: newCount, state: newState, tag: old.tag}.step()
		if !d.casAnchor(old, next64) {
			continue
		}

		if d.cfg.Debug {
			writeDebugByte(slot, debugUsedByte)
		}

		if next64.state == statePartial {
			if !h.active.CompareAndSwap(nil, d) {
				h.sc.putPartial(d)
			}
		}
		return slot, false, nil
	}
}

// allocFromNewSB implements spec.md §4.5: draw a descriptor from the
// pool, allocate a fresh superblock for it, thread its free chain, and
// try to install it as the heap's active descriptor. Once installed,
// slot 0 is handed to the caller that triggered the new-SB path; if another
// thread wins the race to install active first, the whole superblock is
// discarded (forced EMPTY, then retired) and the caller retries from
// the top, since an active or partial descriptor now exists.
func (h *Heap) allocFromNewSB() (unsafe.Pointer, error) {
	d, err := h.sc.pool.Alloc()
	if err != nil {
		return nil, err
	}

	sb, err := allocSB(h.sc.cfg, d)
	if err != nil {
		h.sc.pool.release(d)
		return nil, err
	}

	d.cfg = h.sc.cfg
	d.slotSize = h.sc.slotSize
	d.maxCount = h.sc.maxCount
	d.sb = sb
	d.heap = h
	d.logger = h.logger

	fresh := initFreeChain(d.cfg, sb, d.slotSize, d.maxCount)
	d.anchorWord.Store(fresh.pack())

	if d.cfg.Debug {
		writeDebugByte(sb.slotAddr(d.cfg, d.slotSize, 0), debugUsedByte)
	}

	if h.active.CompareAndSwap(nil, d) {
		return sb.slotAddr(d.cfg, d.slotSize, 0), nil
	}

	lost := anchor{avail: 0, count: d.maxCount, state: stateEmpty, tag: fresh.tag}.step()
	d.anchorWord.Store(lost.pack())
	h.sc.pool.Retire(d)
	return h.Alloc()
}
