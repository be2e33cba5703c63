package clmmcore

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestUpdatePositionPokeOnUninitializedFails(t *testing.T) {
	pt := NewPositionTable()
	key := PositionKey{Owner: "alice", TickLower: -60, TickUpper: 60}

	_, err := pt.UpdatePosition(key, big.NewInt(0), u256Zero(), u256Zero())
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrUninitializedPositionPoke, kind)
}

func TestUpdatePositionAccruesFees(t *testing.T) {
	pt := NewPositionTable()
	key := PositionKey{Owner: "alice", TickLower: -60, TickUpper: 60}

	_, err := pt.UpdatePosition(key, big.NewInt(1000), u256Zero(), u256Zero())
	require.NoError(t, err)

	fi0 := new(uint256.Int).Mul(q128, uint256.NewInt(1)) // one full unit of fee growth per unit liquidity
	pos, err := pt.UpdatePosition(key, big.NewInt(0), fi0, u256Zero())
	require.NoError(t, err)

	require.Equal(t, "1000", pos.TokensOwed0.String())
	require.Equal(t, "0", pos.TokensOwed1.String())
}

func TestPeekUpdateDoesNotMutate(t *testing.T) {
	pt := NewPositionTable()
	key := PositionKey{Owner: "alice", TickLower: -60, TickUpper: 60}

	_, err := pt.UpdatePosition(key, big.NewInt(1000), u256Zero(), u256Zero())
	require.NoError(t, err)

	fi0 := new(uint256.Int).Mul(q128, uint256.NewInt(1))
	peeked, err := pt.PeekUpdate(key, big.NewInt(0), fi0, u256Zero())
	require.NoError(t, err)
	require.Equal(t, "1000", peeked.TokensOwed0.String())

	stored, ok := pt.Get(key)
	require.True(t, ok)
	require.Equal(t, "0", stored.TokensOwed0.String())
	require.Equal(t, "0", stored.FeeGrowthInside0Last.Dec())
}

func TestPositionCollectClampsToOwed(t *testing.T) {
	pt := NewPositionTable()
	key := PositionKey{Owner: "alice", TickLower: -60, TickUpper: 60}
	_, err := pt.UpdatePosition(key, big.NewInt(1000), u256Zero(), u256Zero())
	require.NoError(t, err)

	fi0 := new(uint256.Int).Mul(q128, uint256.NewInt(1))
	_, err = pt.UpdatePosition(key, big.NewInt(0), fi0, u256Zero())
	require.NoError(t, err)

	amount0, amount1, err := pt.Collect(key, uint128.From64(500), uint128.From64(999))
	require.NoError(t, err)
	require.Equal(t, "500", amount0.String())
	require.Equal(t, "0", amount1.String())

	pos, _ := pt.Get(key)
	require.Equal(t, "500", pos.TokensOwed0.String())
}

func TestFeeGrowthInsideInRange(t *testing.T) {
	tt := NewTickTable()
	maxLiq := MaxLiquidityPerTick(60)

	_, err := tt.UpdateTick(-60, 0, big.NewInt(1000), uint256.NewInt(100), uint256.NewInt(200), u256Zero(), 0, 1000, false, maxLiq)
	require.NoError(t, err)
	_, err = tt.UpdateTick(60, 0, big.NewInt(1000), uint256.NewInt(100), uint256.NewInt(200), u256Zero(), 0, 1000, true, maxLiq)
	require.NoError(t, err)

	// The lower tick was initialized at or below the current tick, so it
	// copied the globals as its outside values: all fee growth so far counts
	// as below the range, none inside it.
	inside0, inside1 := FeeGrowthInside(tt, -60, 60, 0, uint256.NewInt(100), uint256.NewInt(200))
	require.Equal(t, "0", inside0.Dec())
	require.Equal(t, "0", inside1.Dec())
}
