// Package lfqueue implements the Michael & Scott lock-free MPMC FIFO
// queue, protected against the classic ABA/use-after-free hazards with
// the hazard package. The slab allocator's size class uses one of these
// to hold partial descriptors; the descriptor pool's free stack (see
// descpool.go in the slab package) is a separate Treiber stack linked
// through the descriptors themselves.
package lfqueue

import (
	"sync"
	"sync/atomic"

	"github.com/go-slab/slaballoc/internal/hazard"
)

const (
	slotHead = 0
	slotNext = 1
)

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Queue is a bounded-ABA-safe, unbounded-capacity MPMC FIFO.
type Queue[T any] struct {
	head    atomic.Pointer[node[T]]
	tail    atomic.Pointer[node[T]]
	domain  *hazard.Domain[node[T]]
	records sync.Pool
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{domain: hazard.NewDomain[node[T]](2, 16)}
	dummy := &node[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

func (q *Queue[T]) getRecord() *hazard.Record[node[T]] {
	if v := q.records.Get(); v != nil {
		return v.(*hazard.Record[node[T]])
	}
	return q.domain.Acquire()
}

func (q *Queue[T]) putRecord(rec *hazard.Record[node[T]]) {
	rec.Clear(slotHead)
	rec.Clear(slotNext)
	q.records.Put(rec)
}

// Enqueue appends value to the tail of the queue.
func (q *Queue[T]) Enqueue(value T) {
	n := &node[T]{value: value}
	rec := q.getRecord()
	defer q.putRecord(rec)

	for {
		tail := rec.ProtectAndLoad(&q.tail, slotHead)
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(tail, n)
				return
			}
			continue
		}
		// Tail has fallen behind; help advance it before retrying.
		q.tail.CompareAndSwap(tail, next)
	}
}

// TryDequeue removes and returns the value at the head of the queue. ok
// is false if the queue was empty.
func (q *Queue[T]) TryDequeue() (value T, ok bool) {
	rec := q.getRecord()
	defer q.putRecord(rec)

	for {
		head := rec.ProtectAndLoad(&q.head, slotHead)
		tail := q.tail.Load()
		next := rec.ProtectAndLoad(&head.next, slotNext)
		if head != q.head.Load() {
			continue
		}
		if next == nil {
			var zero T
			return zero, false
		}
		if head == tail {
			// Tail has fallen behind a completed enqueue; help advance it.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		v := next.value
		if q.head.CompareAndSwap(head, next) {
			rec.Retire(head, func(*node[T]) {})
			return v, true
		}
	}
}
