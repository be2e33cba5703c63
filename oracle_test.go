package clmmcore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestNewOracleRingInitializesFirstSlot(t *testing.T) {
	ring := NewOracleRing(1, 1000)
	require.Equal(t, 1, ring.Len())
	obs := ring.At(0)
	require.True(t, obs.Initialized)
	require.Equal(t, uint32(1000), obs.BlockTimestamp)
}

func TestOracleRingWriteAdvancesAndAccumulates(t *testing.T) {
	ring := NewOracleRing(2, 1000)
	ring.Grow(2)

	index, cardinality := ring.Write(0, 1010, 100, uint128.From64(500), 1, 2)
	require.Equal(t, uint16(1), index)
	require.Equal(t, uint16(2), cardinality)

	obs := ring.At(1)
	require.Equal(t, int64(1000), obs.TickCumulative) // 100 * 10
}

func TestOracleRingWriteNoOpSameTimestamp(t *testing.T) {
	ring := NewOracleRing(1, 1000)
	index, cardinality := ring.Write(0, 1000, 100, uint128.From64(500), 1, 1)
	require.Equal(t, uint16(0), index)
	require.Equal(t, uint16(1), cardinality)
}

func TestObserveSingleZeroSecondsAgoTransformsLive(t *testing.T) {
	ring := NewOracleRing(1, 1000)
	tickCum, _, err := ring.ObserveSingle(1010, 0, 50, 0, uint128.From64(200), 1)
	require.NoError(t, err)
	require.Equal(t, int64(500), tickCum) // 50 * 10
}

func TestObserveSingleExactMatchAtCurrentObservation(t *testing.T) {
	ring := NewOracleRing(1, 1000)
	tickCum, _, err := ring.ObserveSingle(1000, 0, 50, 0, uint128.From64(200), 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), tickCum)
}

func TestOracleInterpolationBetweenObservations(t *testing.T) {
	ring := NewOracleRing(2, 1000)
	ring.Grow(2)
	index, cardinality := ring.Write(0, 1020, 10, uint128.From64(100), 1, 2)
	require.Equal(t, uint16(1), index)

	tickCum, _, err := ring.ObserveSingle(1020, 10, 10, index, uint128.From64(100), cardinality)
	require.NoError(t, err)
	// target=1010 is halfway between observation0(1000,tc=0) and
	// observation1(1020,tc=200): interpolated tc = 0 + (200-0)/20*10 = 100.
	require.Equal(t, int64(100), tickCum)
}
