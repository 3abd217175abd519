package slab

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/go-slab/slaballoc/internal/hazard"
)

// DescriptorPool is the process-wide (or, per spec.md's "Global mutable
// state" design note, optionally per-size-class) free stack of retired
// descriptors. It is a plain Treiber stack: push and pop are single CAS
// loops, and pop is hazard-pointer-protected because a thread can be
// mid-CAS on a head it read just before another thread retires that
// same descriptor back into circulation.
type DescriptorPool struct {
	head      atomic.Pointer[Descriptor]
	domain    *hazard.Domain[Descriptor]
	records   sync.Pool
	batchSize int
	cfg       Config
	logger    *zap.Logger
}

// NewDescriptorPool creates an empty descriptor pool that draws
// batchSize descriptors from the OS at a time (spec.md NUM_DESC_BATCH).
func NewDescriptorPool(cfg Config, logger *zap.Logger) *DescriptorPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DescriptorPool{
		domain:    hazard.NewDomain[Descriptor](1, 16),
		batchSize: cfg.DescBatchSize,
		cfg:       cfg,
		logger:    logger,
	}
}

func (p *DescriptorPool) getRecord() *hazard.Record[Descriptor] {
	if v := p.records.Get(); v != nil {
		return v.(*hazard.Record[Descriptor])
	}
	return p.domain.Acquire()
}

func (p *DescriptorPool) putRecord(rec *hazard.Record[Descriptor]) {
	rec.Clear(0)
	p.records.Put(rec)
}

// Alloc draws a descriptor from the pool, batch-allocating fresh ones
// from the OS when the pool is empty. It never returns a descriptor
// with in_use already set; doing so is an invariant violation in the
// source material this pool is never supposed to reach.
func (p *DescriptorPool) Alloc() (*Descriptor, error) {
	for {
		rec := p.getRecord()
		head := rec.ProtectAndLoad(&p.head, 0)
		if head == nil {
			p.putRecord(rec)
			desc, installed, err := p.allocBatch()
			if err != nil {
				return nil, err
			}
			if installed {
				p.claim(desc)
				return desc, nil
			}
			continue
		}
		next := head.poolNext.Load()
		ok := p.head.CompareAndSwap(head, next)
		rec.Clear(0)
		p.putRecord(rec)
		if ok {
			p.claim(head)
			return head, nil
		}
	}
}

func (p *DescriptorPool) claim(d *Descriptor) {
	if d.inUse.Load() {
		fatal(p.logger, "descriptor pool handed out an in-use descriptor")
	}
	d.inUse.Store(true)
}

// allocBatch allocates batchSize descriptors on the Go heap, threads them into a
// chain, and races to install everything but the first as the pool's
// new free stack. The winner returns descriptor 0 directly, already
// unlinked from the stack it just installed; the loser's batch is
// simply dropped — unlike the C original there is no explicit free()
// to run, Go's GC reclaims the abandoned slice once nothing references
// it.
func (p *DescriptorPool) allocBatch() (desc *Descriptor, installed bool, err error) {
	if p.batchSize < 1 {
		p.batchSize = 1
	}
	batch := make([]Descriptor, p.batchSize)
	for i := range batch {
		batch[i].cfg = p.cfg
		batch[i].logger = p.logger
	}
	for i := 0; i < len(batch)-1; i++ {
		batch[i].poolNext.Store(&batch[i+1])
	}

	if len(batch) == 1 {
		return &batch[0], true, nil
	}

	if p.head.CompareAndSwap(nil, &batch[1]) {
		p.logger.Debug("descriptor pool batch installed", zap.Int("size", len(batch)))
		return &batch[0], true, nil
	}
	p.logger.Debug("descriptor pool batch race lost, discarding batch", zap.Int("size", len(batch)))
	return nil, false, nil
}

// Retire returns an EMPTY, in-use descriptor to the pool once no thread
// may still be dereferencing it as a stale pointer. Requires the
// descriptor's anchor to already be EMPTY — the caller (free.go/alloc.go)
// is responsible for getting it there first.
func (p *DescriptorPool) Retire(d *Descriptor) {
	a := d.loadAnchor()
	if a.state != stateEmpty {
		fatal(p.logger, "retiring a descriptor whose anchor is not EMPTY")
	}
	if !d.inUse.Load() {
		fatal(p.logger, "retiring a descriptor that is not in_use")
	}
	if err := freeSB(d.sb); err != nil {
		p.logger.Warn("failed to release superblock during retirement", zap.Error(err))
	}
	d.sb = nil
	d.inUse.Store(false)

	rec := p.getRecord()
	rec.Retire(d, func(dd *Descriptor) { p.push(dd) })
	p.putRecord(rec)
}

// release returns a descriptor straight to the free stack without the
// EMPTY/in_use preconditions Retire enforces. It exists solely for the
// allocFromNewSB failure path (spec.md §4.5 step 1: a descriptor drawn
// from the pool whose superblock allocation then failed never got far
// enough to need hazard-deferred reclamation — nothing else in the
// process could have observed it yet).
func (p *DescriptorPool) release(d *Descriptor) {
	d.inUse.Store(false)
	p.push(d)
}

func (p *DescriptorPool) push(d *Descriptor) {
	for {
		head := p.head.Load()
		d.poolNext.Store(head)
		if p.head.CompareAndSwap(head, d) {
			return
		}
	}
}
