package slab

import "fmt"

// CheckConsistency walks a heap's active descriptor and then drains its
// size class's partial queue, validating spec.md §8's invariants against
// each descriptor it finds: state matches count, the free chain has
// exactly count distinct in-range indices with no cycle, and — when
// Config.Debug is set — every free slot's sentinel byte is clear and
// every in-use slot's is set.
//
// This is an offline, terminal diagnostic: it drains the partial queue
// (spec.md's consistency checker does the same) rather than leaving it
// intact, so it is only meaningful once nothing else is concurrently
// allocating from or freeing to the heap. It is not part of the hot
// path and should only be called from tests or soak-test teardown.
func CheckConsistency(h *Heap) error {
	if d := h.active.Load(); d != nil {
		if err := checkDescriptor(d); err != nil {
			return fmt.Errorf("active descriptor: %w", err)
		}
	}

	for {
		d, ok := h.sc.partial.TryDequeue()
		if !ok {
			return nil
		}
		if err := checkDescriptor(d); err != nil {
			return fmt.Errorf("partial descriptor: %w", err)
		}
	}
}

func checkDescriptor(d *Descriptor) error {
	a := d.loadAnchor()
	if want := stateFor(a.count, d.maxCount); want != a.state {
		return fmt.Errorf("state %s inconsistent with count %d/%d (want %s)", a.state, a.count, d.maxCount, want)
	}

	seen := make(map[uint16]bool, a.count)
	idx := a.avail
	for i := uint16(0); i < a.count; i++ {
		if idx >= d.maxCount {
			return fmt.Errorf("free chain index %d out of range [0,%d)", idx, d.maxCount)
		}
		if seen[idx] {
			return fmt.Errorf("free chain revisits index %d before reaching count %d", idx, a.count)
		}
		seen[idx] = true
		if i == a.count-1 {
			break
		}
		idx = readNextIndex(d.sb.slotAddr(d.cfg, d.slotSize, idx))
	}
	if uint16(len(seen)) != a.count {
		return fmt.Errorf("free chain visited %d indices, want %d", len(seen), a.count)
	}

	if d.cfg.Debug {
		for i := uint16(0); i < d.maxCount; i++ {
			addr := d.sb.slotAddr(d.cfg, d.slotSize, i)
			free := seen[i]
			switch db := readDebugByte(addr); {
			case free && db != debugFreeByte:
				return fmt.Errorf("slot %d is on the free chain but its sentinel byte is 0x%02x", i, db)
			case !free && db != debugUsedByte:
				return fmt.Errorf("slot %d is in use but its sentinel byte is 0x%02x", i, db)
			}
		}
	}

	return nil
}
