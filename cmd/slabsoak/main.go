// Command slabsoak drives the slab allocator with concurrent Alloc/Free
// churn and descriptor-pool batch races, then runs the consistency
// checker over whatever heaps are left standing. It exists to run the
// long-duration, high-iteration variants of the package tests in
// slab/concurrency_test.go outside of `go test`'s default time budget.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"unsafe"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-slab/slaballoc/slab"
)

func main() {
	var (
		slotSize   = pflag.Uint("slot-size", 16, "slot size in bytes")
		sbSize     = pflag.Uint("sb-size", 16*1024, "superblock size in bytes")
		heaps      = pflag.Int("heaps", 4, "number of heaps sharing the size class")
		workers    = pflag.Int("workers", 8, "concurrent worker goroutines")
		iterations = pflag.Int("iterations", 1_000_000, "Alloc/Free iterations per worker")
		debug      = pflag.Bool("debug", true, "enable the debug sentinel byte and double-free detection")
		verbose    = pflag.Bool("verbose", false, "enable debug-level logging")
	)
	pflag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "slabsoak: building logger:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(logger, soakConfig{
		slotSize:   uintptr(*slotSize),
		sbSize:     uintptr(*sbSize),
		heaps:      *heaps,
		workers:    *workers,
		iterations: *iterations,
		debug:      *debug,
	}); err != nil {
		logger.Error("soak run failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type soakConfig struct {
	slotSize   uintptr
	sbSize     uintptr
	heaps      int
	workers    int
	iterations int
	debug      bool
}

func run(logger *zap.Logger, cfg soakConfig) error {
	sc, err := slab.NewSizeClass(cfg.slotSize,
		slab.WithConfig(slab.Config{SBSize: cfg.sbSize, DescBatchSize: 64, Debug: cfg.debug}),
		slab.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("building size class: %w", err)
	}

	hs := make([]*slab.Heap, cfg.heaps)
	for i := range hs {
		hs[i] = slab.NewHeap(sc)
	}

	logger.Info("starting soak",
		zap.Uintptr("slot_size", cfg.slotSize),
		zap.Uintptr("sb_size", cfg.sbSize),
		zap.Int("heaps", cfg.heaps),
		zap.Int("workers", cfg.workers),
		zap.Int("iterations", cfg.iterations),
	)

	var g errgroup.Group
	var allocs, frees uint64
	var counterMu sync.Mutex

	for w := 0; w < cfg.workers; w++ {
		w := w
		g.Go(func() error {
			local, err := churn(hs, cfg.iterations, w)
			counterMu.Lock()
			allocs += local.allocs
			frees += local.frees
			counterMu.Unlock()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if slab.Stopped() {
		return fmt.Errorf("an invariant violation fired during the soak run")
	}

	for i, h := range hs {
		if err := slab.CheckConsistency(h); err != nil {
			return fmt.Errorf("heap %d failed consistency check: %w", i, err)
		}
	}

	logger.Info("soak passed", zap.Uint64("allocs", allocs), zap.Uint64("frees", frees))
	return nil
}

type churnCounts struct {
	allocs, frees uint64
}

// churn repeatedly allocates from and frees back to a random heap out of
// hs, exercising the active/partial handoff and the descriptor pool's
// batch-allocation race the way slab/concurrency_test.go does at a much
// smaller scale.
func churn(hs []*slab.Heap, iterations, seed int) (churnCounts, error) {
	rng := rand.New(rand.NewSource(int64(seed) + 1))
	held := make([]unsafe.Pointer, 0, 1024)
	var counts churnCounts

	for i := 0; i < iterations; i++ {
		if slab.Stopped() {
			return counts, nil
		}
		h := hs[rng.Intn(len(hs))]
		if len(held) == 0 || rng.Intn(2) == 0 {
			p, err := h.Alloc()
			if err != nil {
				return counts, err
			}
			held = append(held, p)
			counts.allocs++
		} else {
			idx := rng.Intn(len(held))
			slab.Free(held[idx])
			held[idx] = held[len(held)-1]
			held = held[:len(held)-1]
			counts.frees++
		}
	}

	for _, p := range held {
		slab.Free(p)
		counts.frees++
	}
	return counts, nil
}
