package slab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorPoolAllocNeverHandsOutTheSameDescriptorTwice(t *testing.T) {
	pool := NewDescriptorPool(Config{SBSize: testSBSize, DescBatchSize: 4}, nil)

	const n = 64
	seen := make(map[*Descriptor]bool, n)
	for i := 0; i < n; i++ {
		d, err := pool.Alloc()
		require.NoError(t, err)
		require.False(t, seen[d])
		seen[d] = true
		require.True(t, d.inUse.Load())
	}
}

func TestDescriptorPoolRetireAndReuse(t *testing.T) {
	pool := NewDescriptorPool(Config{SBSize: testSBSize, DescBatchSize: 2}, nil)
	d, err := pool.Alloc()
	require.NoError(t, err)

	sb, err := allocSB(testConfig(false), d)
	require.NoError(t, err)
	d.sb = sb
	d.cfg = testConfig(false)
	d.anchorWord.Store(anchor{avail: 0, count: 0, state: stateEmpty}.pack())

	pool.Retire(d)
	require.False(t, d.inUse.Load())
	// Retire defers the push back onto the free stack until the hazard
	// domain scans; force that scan before drawing again.
	pool.domain.ScanAll()

	again, err := pool.Alloc()
	require.NoError(t, err)
	require.Same(t, d, again)
	require.True(t, again.inUse.Load())
}

func TestDescriptorPoolConcurrentAllocIsRaceFree(t *testing.T) {
	pool := NewDescriptorPool(Config{SBSize: testSBSize, DescBatchSize: 4}, nil)

	const goroutines = 16
	const perGoroutine = 32
	results := make([][]*Descriptor, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		g := g
		results[g] = make([]*Descriptor, 0, perGoroutine)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				d, err := pool.Alloc()
				require.NoError(t, err)
				results[g] = append(results[g], d)
			}
		}()
	}
	wg.Wait()

	seen := make(map[*Descriptor]bool, goroutines*perGoroutine)
	for _, rs := range results {
		for _, d := range rs {
			require.False(t, seen[d], "descriptor pool handed out a duplicate under concurrency")
			seen[d] = true
		}
	}
}
