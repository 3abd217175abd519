package slab

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentAllocFreeChurn is spec.md §8 scenario 4/5 scaled down: many
// goroutines racing Alloc/Free against a handful of shared heaps, looking
// for any invariant violation (fatal panics) or duplicate-pointer issue.
// The full iteration count lives in cmd/slabsoak; testing.Short() keeps
// the default `go test` run fast.
func TestConcurrentAllocFreeChurn(t *testing.T) {
	iterations := 20000
	if testing.Short() {
		iterations = 2000
	}

	sc, err := NewSizeClass(16, WithConfig(testConfig(true)))
	require.NoError(t, err)

	const numHeaps = 4
	heaps := make([]*Heap, numHeaps)
	for i := range heaps {
		heaps[i] = NewHeap(sc)
	}

	var g errgroup.Group
	const workers = 8
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			rng := rand.New(rand.NewSource(int64(w) + 1))
			held := make([]unsafe.Pointer, 0, 256)
			for i := 0; i < iterations; i++ {
				h := heaps[rng.Intn(numHeaps)]
				if len(held) == 0 || rng.Intn(2) == 0 {
					p, err := h.Alloc()
					if err != nil {
						return err
					}
					held = append(held, p)
				} else {
					idx := rng.Intn(len(held))
					Free(held[idx])
					held[idx] = held[len(held)-1]
					held = held[:len(held)-1]
				}
			}
			for _, p := range held {
				Free(p)
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	require.False(t, Stopped())
	for _, h := range heaps {
		require.NoError(t, CheckConsistency(h))
	}
}

// TestConcurrentDescriptorPoolBatchRace is spec.md §8 scenario 5: many
// goroutines hitting an empty descriptor pool at once must never hand out
// the same descriptor twice, regardless of how many lose the batch-install
// race in allocBatch.
func TestConcurrentDescriptorPoolBatchRace(t *testing.T) {
	pool := NewDescriptorPool(Config{SBSize: testSBSize, DescBatchSize: 8}, nil)

	const workers = 32
	ch := make(chan *Descriptor, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			d, err := pool.Alloc()
			if err != nil {
				return err
			}
			ch <- d
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(ch)

	seen := make(map[*Descriptor]bool, workers)
	for d := range ch {
		require.False(t, seen[d])
		seen[d] = true
	}
	require.Len(t, seen, workers)
}
