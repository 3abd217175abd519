package slab

import (
	"unsafe"

	"github.com/go-slab/slaballoc/internal/osmem"
)

// Superblock is a contiguous, SBSize-aligned region of memory holding a
// reserved header followed by an array of equally-sized slots. Its
// address is never referenced by callers directly — they only ever see
// slot pointers, and descriptorOf recovers the owning Descriptor from
// any such pointer by masking off the low SBSize bits.
type Superblock struct {
	region []byte
}

// allocSB requests a fresh, aligned superblock from the OS page
// allocator and stamps its header with a back-pointer to desc, per
// spec.md §4.1.
func allocSB(cfg Config, desc *Descriptor) (*Superblock, error) {
	region, err := osmem.AllocAligned(cfg.SBSize, cfg.SBSize)
	if err != nil {
		return nil, ErrOutOfMemory
	}
	sb := &Superblock{region: region}
	sb.setDescriptor(desc)
	return sb, nil
}

// freeSB returns a superblock's region to the OS. The caller must have
// already retired the owning descriptor (anchor EMPTY, in_use cleared).
func freeSB(sb *Superblock) error {
	return osmem.Free(sb.region)
}

func (sb *Superblock) setDescriptor(d *Descriptor) {
	*(**Descriptor)(unsafe.Pointer(&sb.region[0])) = d
}

// descriptorOf recovers the Descriptor owning the superblock that ptr
// was carved from. This is the only metadata lookup the free path
// performs — O(1), no search — and it is only valid for pointers
// previously returned by Heap.Alloc.
func descriptorOf(ptr unsafe.Pointer, sbSize uintptr) *Descriptor {
	base := uintptr(ptr) &^ (sbSize - 1)
	return *(**Descriptor)(unsafe.Pointer(base))
}

// slotAddr returns the address of slot idx within the superblock's
// usable region (i.e. past the header).
func (sb *Superblock) slotAddr(cfg Config, slotSize uintptr, idx uint16) unsafe.Pointer {
	base := unsafe.Pointer(&sb.region[cfg.sbHeaderSize()])
	return unsafe.Add(base, uintptr(idx)*slotSize)
}

// slotIndex is the inverse of slotAddr: given a slot pointer, recover
// its index within the superblock.
func (sb *Superblock) slotIndex(cfg Config, slotSize uintptr, ptr unsafe.Pointer) uint16 {
	base := uintptr(unsafe.Pointer(&sb.region[cfg.sbHeaderSize()]))
	return uint16((uintptr(ptr) - base) / slotSize)
}

func readNextIndex(addr unsafe.Pointer) uint16 {
	return *(*uint16)(addr)
}

func writeNextIndex(addr unsafe.Pointer, next uint16) {
	*(*uint16)(addr) = next
}

const debugSentinelOffset = 2 // byte right after the 2-byte next-index field
const debugFreeByte = 0x00
const debugUsedByte = 0xAA

func writeDebugByte(addr unsafe.Pointer, val byte) {
	*(*byte)(unsafe.Add(addr, debugSentinelOffset)) = val
}

func readDebugByte(addr unsafe.Pointer) byte {
	return *(*byte)(unsafe.Add(addr, debugSentinelOffset))
}

// maxSlots returns how many equally-sized slots of slotSize fit in the
// usable region of a superblock sized by cfg, capped at the largest
// uint16 value.
func maxSlots(cfg Config, slotSize uintptr) uint16 {
	n := cfg.sbUsableSize() / slotSize
	if n > 1<<16-1 {
		n = 1<<16 - 1
	}
	return uint16(n)
}

// initFreeChain threads slots [1, max) into a singly-linked free chain
// and returns the anchor that makes slot 0 the caller's allocation and
// slots [1, max) the free chain, starting at slot 1.
//
// original_source/lock-free-alloc.c's sb_init writes a next-index into
// every free slot, including the last one (whose value is never
// followed because count bounds traversal) — spec.md's Open Question
// flags the alternative of leaving it uninitialized as "correct but
// fragile". This follows the original and initializes all of them.
func initFreeChain(cfg Config, sb *Superblock, slotSize uintptr, max uint16) anchor {
	for i := uint16(1); i < max; i++ {
		addr := sb.slotAddr(cfg, slotSize, i)
		next := i + 1
		if i == max-1 {
			next = max // explicit out-of-range sentinel; never traversed
		}
		writeNextIndex(addr, next)
		if cfg.Debug {
			writeDebugByte(addr, debugFreeByte)
		}
	}
	if cfg.Debug {
		writeDebugByte(sb.slotAddr(cfg, slotSize, 0), debugUsedByte)
	}
	count := max - 1
	return anchor{avail: 1, count: count, state: stateFor(count, max), tag: 0}
}
