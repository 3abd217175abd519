package hazard

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseReusesRecords(t *testing.T) {
	d := NewDomain[int](1, 16)
	r1 := d.Acquire()
	r1.Release()
	r2 := d.Acquire()
	require.Same(t, r1.r, r2.r, "Release should make the record available for reuse")
}

func TestProtectAndLoadReturnsCurrentValue(t *testing.T) {
	d := NewDomain[int](1, 16)
	rec := d.Acquire()
	defer rec.Release()

	var slot atomic.Pointer[int]
	n := new(int)
	*n = 42
	slot.Store(n)

	got := rec.ProtectAndLoad(&slot, 0)
	require.Same(t, n, got)
}

func TestRetireReclaimsOnceUnhazardous(t *testing.T) {
	d := NewDomain[int](1, 1) // scanThreshold 1: scan fires on every retire
	rec := d.Acquire()
	defer rec.Release()

	var mu sync.Mutex
	reclaimed := 0
	n := new(int)
	rec.Retire(n, func(*int) {
		mu.Lock()
		reclaimed++
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, reclaimed)
}

func TestRetireDefersWhileStillPublishedAsHazardous(t *testing.T) {
	d := NewDomain[int](1, 1)
	holder := d.Acquire()
	defer holder.Release()

	var slot atomic.Pointer[int]
	n := new(int)
	slot.Store(n)
	require.Same(t, n, holder.ProtectAndLoad(&slot, 0))

	retirer := d.Acquire()
	defer retirer.Release()

	reclaimed := false
	retirer.Retire(n, func(*int) { reclaimed = true })
	require.False(t, reclaimed, "a node still published in a hazard slot must not be reclaimed")

	holder.Clear(0)
	retirer.Retire(new(int), func(*int) {}) // crosses scanThreshold again, forcing a rescan
	require.True(t, reclaimed)
}

func TestScanAllDrainsEveryActiveRecord(t *testing.T) {
	d := NewDomain[int](1, 1000) // high threshold: nothing scans until ScanAll forces it
	rec := d.Acquire()
	defer rec.Release()

	reclaimed := false
	rec.Retire(new(int), func(*int) { reclaimed = true })
	require.False(t, reclaimed)

	d.ScanAll()
	require.True(t, reclaimed)
}
