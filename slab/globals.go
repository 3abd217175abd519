package slab

import (
	"fmt"
	"sync/atomic"
)

// Free's descriptor_of lookup masks a pointer's low bits to find its
// superblock header, which only works if every live superblock in the
// process shares one alignment. globalSBSize latches the first SBSize
// any SizeClass is created with; later size classes must agree with it.
// Tests that want an unusually small SBSize are free to do so as long
// as they don't mix it with the process default in the same run.
var globalSBSize atomic.Uintptr

func registerSBSize(sbSize uintptr) error {
	if globalSBSize.CompareAndSwap(0, uintptr(sbSize)) {
		return nil
	}
	if globalSBSize.Load() != uintptr(sbSize) {
		return fmt.Errorf("slaballoc: superblock size %d conflicts with %d already in use by another size class in this process", sbSize, globalSBSize.Load())
	}
	return nil
}
