package clmmcore

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestUpdateTickFlipsOnFirstLiquidity(t *testing.T) {
	tt := NewTickTable()
	maxLiq := MaxLiquidityPerTick(60)

	flipped, err := tt.UpdateTick(60, 0, big.NewInt(1000), u256Zero(), u256Zero(), u256Zero(), 0, 1000, false, maxLiq)
	require.NoError(t, err)
	require.True(t, flipped)

	tick, ok := tt.Get(60)
	require.True(t, ok)
	require.Equal(t, int64(1000), tick.LiquidityNet.Int64())
}

func TestUpdateTickUpperNegatesNet(t *testing.T) {
	tt := NewTickTable()
	maxLiq := MaxLiquidityPerTick(60)

	_, err := tt.UpdateTick(60, 0, big.NewInt(1000), u256Zero(), u256Zero(), u256Zero(), 0, 1000, true, maxLiq)
	require.NoError(t, err)

	tick, ok := tt.Get(60)
	require.True(t, ok)
	require.Equal(t, int64(-1000), tick.LiquidityNet.Int64())
}

func TestUpdateTickRejectsOverflow(t *testing.T) {
	tt := NewTickTable()
	small, err := u128FromBig(big.NewInt(500))
	require.NoError(t, err)

	_, err = tt.UpdateTick(60, 0, big.NewInt(1000), u256Zero(), u256Zero(), u256Zero(), 0, 1000, false, small)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrLiquidityOverflow, kind)
}

func TestUpdateTickUnflipsOnFullRemoval(t *testing.T) {
	tt := NewTickTable()
	maxLiq := MaxLiquidityPerTick(60)

	_, err := tt.UpdateTick(60, 0, big.NewInt(1000), u256Zero(), u256Zero(), u256Zero(), 0, 1000, false, maxLiq)
	require.NoError(t, err)

	flipped, err := tt.UpdateTick(60, 0, big.NewInt(-1000), u256Zero(), u256Zero(), u256Zero(), 0, 1000, false, maxLiq)
	require.NoError(t, err)
	require.True(t, flipped)
}

func TestNextInitializedTickSentinels(t *testing.T) {
	tt := NewTickTable()
	require.Equal(t, MinTick, tt.NextInitializedTick(0, true))
	require.Equal(t, MaxTick, tt.NextInitializedTick(0, false))
}

func TestNextInitializedTickFindsNeighbors(t *testing.T) {
	tt := NewTickTable()
	maxLiq := MaxLiquidityPerTick(60)
	for _, tick := range []int32{-120, -60, 60, 120} {
		_, err := tt.UpdateTick(tick, 0, big.NewInt(1), u256Zero(), u256Zero(), u256Zero(), 0, 1000, false, maxLiq)
		require.NoError(t, err)
	}

	require.Equal(t, int32(-60), tt.NextInitializedTick(0, true))
	require.Equal(t, int32(60), tt.NextInitializedTick(0, false))
	require.Equal(t, int32(-120), tt.NextInitializedTick(-100, true))
	require.Equal(t, int32(-60), tt.NextInitializedTick(-100, false))
}

func TestCrossTickInvertsOutsideAccumulators(t *testing.T) {
	tt := NewTickTable()
	maxLiq := MaxLiquidityPerTick(60)
	_, err := tt.UpdateTick(60, 100, big.NewInt(500), uint256.NewInt(10), uint256.NewInt(20), uint256.NewInt(0), 0, 1000, false, maxLiq)
	require.NoError(t, err)

	net := tt.CrossTick(60, uint256.NewInt(30), uint256.NewInt(50), uint256.NewInt(5), 200, 2000)
	require.Equal(t, int64(500), net.Int64())

	tick, _ := tt.Get(60)
	require.Equal(t, "20", tick.FeeGrowthOutside0.Dec())
	require.Equal(t, "30", tick.FeeGrowthOutside1.Dec())
}

func TestMaxLiquidityPerTickIsPositive(t *testing.T) {
	maxLiq := MaxLiquidityPerTick(60)
	require.True(t, maxLiq.Cmp(uint128.Zero) > 0)
}
