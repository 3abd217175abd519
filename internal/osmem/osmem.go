// Package osmem is the OS-page collaborator the slab allocator draws
// superblocks from: an aligned anonymous mmap region per request, freed
// with munmap. It has no notion of slots, descriptors, or anchors — it
// only knows how to hand back memory of a given size at a given
// alignment and take it back later.
package osmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// AllocAligned reserves size bytes of anonymous, zero-filled memory
// aligned to align, where align is a power of two. It over-maps and
// trims so the returned slice starts on an alignment boundary, then
// unmaps the unused head and tail so the process's address space
// isn't permanently wasted. Trimming works in whole pages: the rest of
// the page the region ends in stays mapped until Free.
func AllocAligned(size, align uintptr) ([]byte, error) {
	if align&(align-1) != 0 {
		return nil, fmt.Errorf("osmem: alignment %d is not a power of two", align)
	}

	length := size + align
	addr, err := unix.MmapPtr(-1, 0, nil, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("osmem: mmap %d bytes: %w", length, err)
	}
	raw := unsafe.Slice((*byte)(addr), length)

	base := uintptr(addr)
	misalign := base & (align - 1)
	var head uintptr
	if misalign != 0 {
		head = align - misalign
	}
	tailStart := head + size
	page := uintptr(unix.Getpagesize())
	tailTrim := (tailStart + page - 1) &^ (page - 1)

	if head > 0 {
		if err := unix.MunmapPtr(addr, head); err != nil {
			unmapBestEffort(raw)
			return nil, fmt.Errorf("osmem: trim head: %w", err)
		}
	}
	if tailTrim < length {
		if err := unix.MunmapPtr(unsafe.Add(addr, tailTrim), length-tailTrim); err != nil {
			unmapBestEffort(raw[head:tailStart])
			return nil, fmt.Errorf("osmem: trim tail: %w", err)
		}
	}

	return raw[head:tailStart], nil
}

// Free returns a region previously returned by AllocAligned to the OS.
func Free(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	if err := unix.MunmapPtr(unsafe.Pointer(&region[0]), uintptr(len(region))); err != nil {
		return fmt.Errorf("osmem: munmap: %w", err)
	}
	return nil
}

func unmapBestEffort(region []byte) {
	if len(region) > 0 {
		_ = unix.MunmapPtr(unsafe.Pointer(&region[0]), uintptr(len(region)))
	}
}
