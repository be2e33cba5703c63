package clmmcore

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	lo, err := GetSqrtRatioAtTick(MinTick)
	require.NoError(t, err)
	require.Equal(t, minSqrtRatio.String(), lo.String())

	_, err = GetSqrtRatioAtTick(MaxTick + 1)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrOutOfRangeTick, kind)
}

func TestGetSqrtRatioAtTickZeroIsQ96(t *testing.T) {
	sp, err := GetSqrtRatioAtTick(0)
	require.NoError(t, err)
	require.Equal(t, q96.String(), sp.String())
}

func TestTickRoundTrip(t *testing.T) {
	ticks := []int32{MinTick, MinTick + 1, -500000, -1, 0, 1, 500000, MaxTick - 1, MaxTick}
	for _, tick := range ticks {
		sp, err := GetSqrtRatioAtTick(tick)
		require.NoErrorf(t, err, "tick=%d", tick)

		// GetTickAtSqrtRatio returns the greatest tick whose ratio is <= sp,
		// so round-tripping the exact boundary value must recover the tick
		// itself, except at MaxTick: its ratio is exactly MaxSqrtRatio, just
		// outside the open upper bound of GetTickAtSqrtRatio's valid domain,
		// so it is rejected.
		if tick == MaxTick {
			_, err := GetTickAtSqrtRatio(sp)
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			require.Equal(t, ErrOutOfRangeSqrtPrice, kind)
			continue
		}

		recovered, err := GetTickAtSqrtRatio(sp)
		require.NoErrorf(t, err, "tick=%d", tick)
		require.Equal(t, tick, recovered)
	}
}

func TestGetTickAtSqrtRatioOutOfRange(t *testing.T) {
	_, err := GetTickAtSqrtRatio(u256Clone(minSqrtRatio).Sub(minSqrtRatio, u256FromBig(big.NewInt(1))))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrOutOfRangeSqrtPrice, kind)
}

func TestGetTickAtSqrtRatioMonotonic(t *testing.T) {
	spLow, err := GetSqrtRatioAtTick(-100)
	require.NoError(t, err)
	spHigh, err := GetSqrtRatioAtTick(100)
	require.NoError(t, err)
	require.True(t, spLow.Lt(spHigh))

	tLow, err := GetTickAtSqrtRatio(spLow)
	require.NoError(t, err)
	tHigh, err := GetTickAtSqrtRatio(spHigh)
	require.NoError(t, err)
	require.True(t, tLow < tHigh)
}
