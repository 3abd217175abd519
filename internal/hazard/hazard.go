// Package hazard implements Michael's hazard-pointer reclamation scheme:
// a thread that is about to dereference a pointer it read from a shared
// lock-free structure first publishes it in a hazard-pointer slot, so
// that any other thread wanting to reclaim the same pointer can see it
// is still "hazardous" and must defer the reclaim.
//
// This is the collaborator the slab allocator's descriptor pool and
// partial queue lean on to make their pop/dequeue paths safe: a reader
// can hold a stale head pointer mid-CAS while another thread retires
// the node it points to.
package hazard

import (
	"sync"
	"sync/atomic"
)

// record is one participant's set of published hazard pointers plus its
// private retire list. Records form a lock-free singly-linked list so
// that Acquire can reuse a record another goroutine has released instead
// of growing the list forever.
type record[T any] struct {
	next    atomic.Pointer[record[T]]
	active  atomic.Bool
	hp      []atomic.Pointer[T]
	retired []retired[T]
}

type retired[T any] struct {
	ptr    *T
	reclaim func(*T)
}

// Domain owns the hazard-pointer records for one class of reclaimable
// object (e.g. descriptor-pool nodes, or partial-queue nodes). Domains
// for unrelated object types must not share hazard pointers, so callers
// typically keep one Domain per node type.
type Domain[T any] struct {
	slotsPerRecord int
	head           atomic.Pointer[record[T]]
	scanThreshold  int
}

// NewDomain creates a hazard-pointer domain where each participant gets
// slotsPerRecord hazard-pointer slots. scanThreshold controls how many
// retired nodes a record accumulates before it scans for reclaimable
// ones; a small threshold reclaims promptly at the cost of more scans.
func NewDomain[T any](slotsPerRecord, scanThreshold int) *Domain[T] {
	if slotsPerRecord < 1 {
		slotsPerRecord = 1
	}
	if scanThreshold < 1 {
		scanThreshold = 1
	}
	return &Domain[T]{slotsPerRecord: slotsPerRecord, scanThreshold: scanThreshold}
}

// Record is a handle a goroutine holds for the lifetime of its
// participation in the domain. It must not be shared across goroutines.
type Record[T any] struct {
	d *Domain[T]
	r *record[T]
}

// Acquire returns a Record for the calling goroutine, reusing a record
// left behind by a goroutine that called Release, or allocating a new
// one and lock-free-prepending it to the domain's record list.
func (d *Domain[T]) Acquire() *Record[T] {
	for r := d.head.Load(); r != nil; r = r.next.Load() {
		if !r.active.Load() && r.active.CompareAndSwap(false, true) {
			return &Record[T]{d: d, r: r}
		}
	}

	r := &record[T]{hp: make([]atomic.Pointer[T], d.slotsPerRecord)}
	r.active.Store(true)
	for {
		head := d.head.Load()
		r.next.Store(head)
		if d.head.CompareAndSwap(head, r) {
			return &Record[T]{d: d, r: r}
		}
	}
}

// Release marks the record available for reuse by a future Acquire. The
// caller must not touch the Record again afterwards.
func (rec *Record[T]) Release() {
	for i := range rec.r.hp {
		rec.r.hp[i].Store(nil)
	}
	rec.r.active.Store(false)
}

// ProtectAndLoad publishes slot's current value in hazard slot idx, then
// re-reads slot to confirm it didn't change out from under the publish —
// the standard hazard-pointer load protocol. The returned pointer is
// safe to dereference until the matching Clear (or a subsequent
// ProtectAndLoad into the same slot).
func (rec *Record[T]) ProtectAndLoad(slot *atomic.Pointer[T], idx int) *T {
	for {
		p := slot.Load()
		rec.r.hp[idx].Store(p)
		if slot.Load() == p {
			return p
		}
	}
}

// Clear retracts the hazard pointer published in slot idx, declaring the
// calling goroutine is no longer relying on it being stable.
func (rec *Record[T]) Clear(idx int) {
	rec.r.hp[idx].Store(nil)
}

// Retire defers reclaim(ptr) until no record in the domain still
// publishes ptr as hazardous. It may run reclaim synchronously, inline,
// if doing so is already safe.
func (rec *Record[T]) Retire(ptr *T, reclaim func(*T)) {
	rec.r.retired = append(rec.r.retired, retired[T]{ptr: ptr, reclaim: reclaim})
	if len(rec.r.retired) >= rec.d.scanThreshold {
		rec.scan()
	}
}

// scan partitions the calling record's retired list into nodes that are
// still published somewhere (kept for the next round) and nodes that are
// not (reclaimed now).
func (rec *Record[T]) scan() {
	hazardous := rec.d.snapshotHazardous()

	kept := rec.r.retired[:0]
	for _, node := range rec.r.retired {
		if _, stillHazardous := hazardous[node.ptr]; stillHazardous {
			kept = append(kept, node)
			continue
		}
		node.reclaim(node.ptr)
	}
	rec.r.retired = kept
}

// snapshotHazardous walks every record's published hazard slots and
// returns the set of currently-hazardous pointers. Concurrent Acquire
// calls may append new records mid-scan; missing a brand-new record is
// safe because that record cannot yet be publishing a hazard pointer to
// a node it never observed.
func (d *Domain[T]) snapshotHazardous() map[*T]struct{} {
	set := make(map[*T]struct{})
	for r := d.head.Load(); r != nil; r = r.next.Load() {
		for i := range r.hp {
			if p := r.hp[i].Load(); p != nil {
				set[p] = struct{}{}
			}
		}
	}
	return set
}

// ScanAll forces every active record in the domain to reconcile its
// retired list against the current hazard-pointer snapshot. It is not
// needed on any hot path; tests and offline diagnostics use it to drain
// pending reclaims deterministically before asserting on final state.
func (d *Domain[T]) ScanAll() {
	var wg sync.WaitGroup
	for r := d.head.Load(); r != nil; r = r.next.Load() {
		if !r.active.Load() {
			continue
		}
		wg.Add(1)
		rec := &Record[T]{d: d, r: r}
		go func() {
			defer wg.Done()
			rec.scan()
		}()
	}
	wg.Wait()
}
