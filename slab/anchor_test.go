package slab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnchorPackUnpackRoundTrip(t *testing.T) {
	cases := []anchor{
		{avail: 0, count: 0, state: stateFull, tag: 0},
		{avail: 1023, count: 1023, state: stateEmpty, tag: tagMask},
		{avail: 5, count: 17, state: statePartial, tag: 12345},
	}
	for _, a := range cases {
		require.Equal(t, a, unpackAnchor(a.pack()))
	}
}

func TestAnchorPackIgnoresOutOfRangeBits(t *testing.T) {
	// avail/count/state/tag are each masked on pack, so a value that
	// overflows its field width doesn't bleed into its neighbor.
	a := anchor{avail: uint16(availMask + 1), count: 0, state: stateFull, tag: 0}
	require.Equal(t, uint16(0), unpackAnchor(a.pack()).avail)
}

func TestAnchorStepWrapsModTagBits(t *testing.T) {
	a := anchor{tag: tagMask}
	a = a.step()
	require.Equal(t, uint64(0), a.tag)
}

func TestAnchorStepIncrements(t *testing.T) {
	a := anchor{tag: 41}
	a = a.step()
	require.Equal(t, uint64(42), a.tag)
}

func TestStateFor(t *testing.T) {
	require.Equal(t, stateFull, stateFor(0, 10))
	require.Equal(t, stateEmpty, stateFor(10, 10))
	require.Equal(t, statePartial, stateFor(5, 10))
	require.Equal(t, stateFull, stateFor(0, 1)) // single-slot superblock, fully allocated
}

func TestSBStateString(t *testing.T) {
	require.Equal(t, "FULL", stateFull.String())
	require.Equal(t, "PARTIAL", statePartial.String())
	require.Equal(t, "EMPTY", stateEmpty.String())
	require.Equal(t, "INVALID", sbState(3).String())
}
