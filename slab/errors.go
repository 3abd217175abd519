package slab

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrOutOfMemory is returned when the OS page allocator cannot satisfy a
// superblock request. It never leaves any
// descriptor or anchor in an inconsistent state.
var ErrOutOfMemory = errors.New("slaballoc: out of memory")

// stopped is flipped by fatal before it panics, so that long-running
// goroutines (stress harnesses, soak tests) can poll Stopped() and halt
// promptly instead of continuing to hammer a structure that just failed
// an invariant check elsewhere.
var stopped atomic.Bool

// Stopped reports whether an invariant violation has already fired in
// this process. Concurrent workers in a stress test should check this
// between iterations.
func Stopped() bool { return stopped.Load() }

// fatal records an invariant violation and aborts the calling
// goroutine. The anchor/descriptor state machine has no recovery path
// for a broken invariant — spec.md classifies these as
// InvariantViolation, equivalent to the teacher's runtime throw().
func fatal(logger *zap.Logger, msg string, fields ...zap.Field) {
	stopped.Store(true)
	if logger != nil {
		logger.Error("slaballoc: invariant violation", append(fields, zap.String("detail", msg))...)
	}
	panic(fmt.Sprintf("slaballoc: invariant violation: %s", msg))
}
