// Package slab implements a lock-free slab allocator for small,
// fixed-size objects, after Michael, "Scalable Lock-Free Dynamic Memory
// Allocation" (PLDI 2004).
//
// A SizeClass groups descriptors serving one slot size; a Heap is the
// per-goroutine-group front end that allocates from a SizeClass,
// preferring its own active descriptor, then the size class's shared
// partial queue, then a freshly OS-allocated superblock. Superblocks
// are SBSize-aligned regions carved into equally-sized slots; each
// carries a header pointing back to its Descriptor, so Free can locate
// a slot's metadata in O(1) from the pointer alone.
//
// Every mutation to shared state — a descriptor's anchor, a heap's
// active slot, the descriptor pool's free stack, a size class's partial
// queue — goes through a single CompareAndSwap. No path in this package
// blocks except the underlying OS page allocator call.
package slab
