package slab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSizeClassRejectsTooSmallSlot(t *testing.T) {
	_, err := NewSizeClass(minSlotSize-1, WithConfig(testConfig(false)))
	require.Error(t, err)
}

func TestNewSizeClassRejectsSlotLargerThanSuperblock(t *testing.T) {
	cfg := Config{SBSize: 64, DescBatchSize: 1}
	_, err := NewSizeClass(1<<20, WithConfig(cfg))
	require.Error(t, err)
}

func TestNewSizeClassRejectsTooManySlots(t *testing.T) {
	// Minimum-size slots in a huge superblock blow past the 10-bit
	// avail/count budget (MaxSlotsPerSuperblock) long before it would
	// ever touch globalSBSize, since that check runs first.
	cfg := Config{SBSize: 1 << 24, DescBatchSize: 1}
	_, err := NewSizeClass(minSlotSize, WithConfig(cfg))
	require.Error(t, err)
}

func TestNewSizeClassComputesMaxSlots(t *testing.T) {
	cfg := testConfig(false)
	sc, err := NewSizeClass(8, WithConfig(cfg))
	require.NoError(t, err)
	require.Equal(t, uintptr(8), sc.SlotSize())
	require.Equal(t, cfg.sbUsableSize()/8, uintptr(sc.maxCount))
}

func TestSizeClassesCanShareADescriptorPool(t *testing.T) {
	pool := NewDescriptorPool(testConfig(false), nil)
	sc1, err := NewSizeClass(8, WithConfig(testConfig(false)), WithDescriptorPool(pool))
	require.NoError(t, err)
	sc2, err := NewSizeClass(16, WithConfig(testConfig(false)), WithDescriptorPool(pool))
	require.NoError(t, err)
	require.Same(t, pool, sc1.pool)
	require.Same(t, sc1.pool, sc2.pool)
}
