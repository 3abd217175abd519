package osmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocAlignedReturnsAlignedMemoryOfRequestedSize(t *testing.T) {
	const size = 16 * 1024
	const align = 16 * 1024

	region, err := AllocAligned(size, align)
	require.NoError(t, err)
	defer Free(region)

	require.Len(t, region, size)
	require.Zero(t, uintptr(ptrOf(region))%align)
}

func TestAllocAlignedRejectsNonPowerOfTwoAlignment(t *testing.T) {
	_, err := AllocAligned(4096, 3)
	require.Error(t, err)
}

func TestAllocatedMemoryIsWritable(t *testing.T) {
	region, err := AllocAligned(4096, 4096)
	require.NoError(t, err)
	defer Free(region)

	for i := range region {
		region[i] = byte(i)
	}
	for i := range region {
		require.Equal(t, byte(i), region[i])
	}
}

func TestFreeOnEmptyRegionIsANoop(t *testing.T) {
	require.NoError(t, Free(nil))
}
