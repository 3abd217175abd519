package slab

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-slab/slaballoc/internal/lfqueue"
)

// SizeClass groups every descriptor that hands out slots of one size.
// It owns the lock-free partial queue those descriptors circulate
// through; one or more Heaps may share a SizeClass, in which case they
// compete for its partial queue (spec.md §3, "Heap construction").
type SizeClass struct {
	slotSize uintptr
	maxCount uint16
	cfg      Config
	pool     *DescriptorPool
	partial  *lfqueue.Queue[*Descriptor]
	logger   *zap.Logger
}

// SizeClassOption configures a SizeClass at construction time.
type SizeClassOption func(*sizeClassOpts)

type sizeClassOpts struct {
	cfg    Config
	pool   *DescriptorPool
	logger *zap.Logger
}

// WithConfig overrides the default Config (superblock size, batch size,
// debug sentinel).
func WithConfig(cfg Config) SizeClassOption {
	return func(o *sizeClassOpts) { o.cfg = cfg }
}

// WithDescriptorPool shares an existing pool across size classes
// instead of creating a private one — spec.md's design note allows
// either a process-wide or a per-size-class pool.
func WithDescriptorPool(pool *DescriptorPool) SizeClassOption {
	return func(o *sizeClassOpts) { o.pool = pool }
}

// WithLogger attaches a structured logger; nil (the default) logs
// nothing.
func WithLogger(logger *zap.Logger) SizeClassOption {
	return func(o *sizeClassOpts) { o.logger = logger }
}

// NewSizeClass builds a size class for slots of exactly slotSize bytes.
// slotSize must be at least 3: two bytes hold the free-chain next-index
// and the third is where the debug sentinel byte lives (see
// superblock.go's debugSentinelOffset) even when Config.Debug is off,
// so a slot's layout doesn't change shape when debug mode is toggled.
const minSlotSize = 3

func NewSizeClass(slotSize uintptr, opts ...SizeClassOption) (*SizeClass, error) {
	o := sizeClassOpts{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	if slotSize < minSlotSize {
		return nil, fmt.Errorf("slaballoc: slot size %d is smaller than the minimum %d", slotSize, minSlotSize)
	}

	max := maxSlots(o.cfg, slotSize)
	if max == 0 {
		return nil, fmt.Errorf("slaballoc: slot size %d does not fit in a %d-byte superblock", slotSize, o.cfg.SBSize)
	}
	if max > MaxSlotsPerSuperblock {
		return nil, fmt.Errorf("slaballoc: slot size %d yields %d slots, exceeding the %d-bit avail/count budget", slotSize, max, availBits)
	}

	if err := registerSBSize(o.cfg.SBSize); err != nil {
		return nil, err
	}

	pool := o.pool
	if pool == nil {
		pool = NewDescriptorPool(o.cfg, o.logger)
	}

	return &SizeClass{
		slotSize: slotSize,
		maxCount: max,
		cfg:      o.cfg,
		pool:     pool,
		partial:  lfqueue.New[*Descriptor](),
		logger:   o.logger,
	}, nil
}

// SlotSize returns the fixed allocation size this class serves.
func (sc *SizeClass) SlotSize() uintptr { return sc.slotSize }

// getPartial repeatedly dequeues from the partial queue, retiring any
// descriptor that turns out to be stale-EMPTY (spec.md §4.4's
// list_get_partial), until it finds a live PARTIAL descriptor or the
// queue is drained.
func (sc *SizeClass) getPartial() *Descriptor {
	for {
		d, ok := sc.partial.TryDequeue()
		if !ok {
			return nil
		}
		if d.loadAnchor().state == stateEmpty {
			sc.pool.Retire(d)
			continue
		}
		return d
	}
}

func (sc *SizeClass) putPartial(d *Descriptor) {
	sc.partial.Enqueue(d)
}

// removeEmptyPartials drains up to max descriptors from the front of
// the partial queue that are stale-EMPTY, retiring them, and
// re-enqueues anything live it finds along the way. It is the bounded
// opportunistic cleanup spec.md §4.6 calls out on the free path: a
// full scan would add unbounded latency there.
func (sc *SizeClass) removeEmptyPartials(max int) {
	for removed := 0; removed < max; removed++ {
		d, ok := sc.partial.TryDequeue()
		if !ok {
			return
		}
		if d.loadAnchor().state != stateEmpty {
			sc.partial.Enqueue(d)
			return
		}
		sc.pool.Retire(d)
	}
}
