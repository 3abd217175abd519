package lfqueue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFIFOOrderSingleProducerSingleConsumer(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10; i++ {
		q.Enqueue(i)
	}
	for i := 0; i < 10; i++ {
		v, ok := q.TryDequeue()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	_, ok := q.TryDequeue()
	require.False(t, ok)
}

func TestTryDequeueOnEmptyQueue(t *testing.T) {
	q := New[string]()
	_, ok := q.TryDequeue()
	require.False(t, ok)
}

func TestConcurrentEnqueueDequeueLosesNothing(t *testing.T) {
	q := New[int]()
	const producers = 8
	const perProducer = 2000
	const total = producers * perProducer

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				q.Enqueue(p*perProducer + i)
			}
			return nil
		})
	}

	var (
		mu   sync.Mutex
		seen = make(map[int]bool, total)
		wg   sync.WaitGroup
	)
	for c := 0; c < producers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok := q.TryDequeue()
				if !ok {
					mu.Lock()
					n := len(seen)
					mu.Unlock()
					if n >= total {
						return
					}
					continue
				}
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}

	require.NoError(t, g.Wait())
	wg.Wait()
	require.Len(t, seen, total)
}
