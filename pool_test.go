package clmmcore

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	cosmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func newTestPool(t *testing.T) *PoolEngine {
	t.Helper()
	immutables, err := NewPoolImmutables(
		common.HexToAddress("0x1"),
		FeeMedium,
		0,
		TokenInfo{Address: common.HexToAddress("0xA0"), Symbol: "USDC", Decimals: 6},
		TokenInfo{Address: common.HexToAddress("0xA1"), Symbol: "WETH", Decimals: 18},
	)
	require.NoError(t, err)

	pool, err := NewPool(immutables, nil, 1000)
	require.NoError(t, err)
	return pool
}

func TestMintBurnRoundTripOnEmptyPool(t *testing.T) {
	pool := newTestPool(t)

	amount0, amount1, err := pool.Mint("alice", -600, 600, uint128.From64(1_000_000))
	require.NoError(t, err)
	require.True(t, amount0.IsPositive())
	require.True(t, amount1.IsPositive())

	burned0, burned1, err := pool.Burn("alice", -600, 600, uint128.From64(1_000_000), true)
	require.NoError(t, err)

	// Burning the exact minted liquidity back out returns (at most, due to
	// rounding) what was put in.
	require.True(t, burned0.LTE(amount0))
	require.True(t, burned1.LTE(amount1))

	collected0, collected1, err := pool.Collect("alice", -600, 600, uint128.Max, uint128.Max)
	require.NoError(t, err)
	require.Equal(t, burned0.BigInt().String(), collected0.Big().String())
	require.Equal(t, burned1.BigInt().String(), collected1.Big().String())
}

func TestMintZeroAmountRejected(t *testing.T) {
	pool := newTestPool(t)
	_, _, err := pool.Mint("alice", -600, 600, uint128.Zero)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrZeroLiquidity, kind)
}

func TestBurnPokeOnUninitializedPositionFails(t *testing.T) {
	pool := newTestPool(t)
	_, _, err := pool.Burn("bob", -60, 60, uint128.Zero, true)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrUninitializedPositionPoke, kind)
}

func TestMintInvalidTickRangeRejected(t *testing.T) {
	pool := newTestPool(t)
	_, _, err := pool.Mint("alice", 600, -600, uint128.From64(100))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidTickRange, kind)
}

func TestMintUnspacedTicksRejected(t *testing.T) {
	pool := newTestPool(t)
	_, _, err := pool.Mint("alice", -601, 600, uint128.From64(100))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrTicksNotSpaced, kind)
}

func TestSwapZeroAmountRejected(t *testing.T) {
	pool := newTestPool(t)
	sqrtLimit, err := GetSqrtRatioAtTick(-887271)
	require.NoError(t, err)
	_, _, err = pool.Swap(true, cosmath.ZeroInt(), sqrtLimit)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrZeroSwapAmount, kind)
}

func TestSwapExactInputAtFullRangeLiquidity(t *testing.T) {
	pool := newTestPool(t)
	_, _, err := pool.Mint("lp", MinTick+(MinTick%60*-1), MaxTick-(MaxTick%60), uint128.From64(1_000_000_000))
	require.NoError(t, err)

	sqrtLimit, err := GetSqrtRatioAtTick(-200000)
	require.NoError(t, err)

	amount0, amount1, err := pool.Swap(true, cosmath.NewInt(100_000), sqrtLimit)
	require.NoError(t, err)
	require.True(t, amount0.IsPositive())
	require.True(t, amount1.IsNegative())
}

func TestSwapClampedByPriceLimit(t *testing.T) {
	pool := newTestPool(t)
	_, _, err := pool.Mint("lp", MinTick+(MinTick%60*-1), MaxTick-(MaxTick%60), uint128.From64(1_000_000_000))
	require.NoError(t, err)

	sqrtLimit, err := GetSqrtRatioAtTick(-10)
	require.NoError(t, err)

	_, _, err = pool.Swap(true, cosmath.NewInt(1_000_000_000_000), sqrtLimit)
	require.NoError(t, err)
	require.Equal(t, sqrtLimit.String(), pool.Slot0.SqrtPrice.String())
}

func TestSwapInvalidPriceLimitDirectionRejected(t *testing.T) {
	pool := newTestPool(t)
	sqrtAbove, err := GetSqrtRatioAtTick(100)
	require.NoError(t, err)
	_, _, err = pool.Swap(true, cosmath.NewInt(1000), sqrtAbove)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidPriceLimit, kind)
}

func TestSetFeeProtocolValidatesNibbles(t *testing.T) {
	pool := newTestPool(t)
	require.NoError(t, pool.SetFeeProtocol(0, 0))
	require.NoError(t, pool.SetFeeProtocol(4, 10))

	err := pool.SetFeeProtocol(1, 0)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidFeeProtocol, kind)
}

func TestSwapAccruesProtocolFee(t *testing.T) {
	pool := newTestPool(t)
	require.NoError(t, pool.SetFeeProtocol(4, 4))

	_, _, err := pool.Mint("lp", MinTick+(MinTick%60*-1), MaxTick-(MaxTick%60), uint128.From64(1_000_000_000))
	require.NoError(t, err)

	sqrtLimit, err := GetSqrtRatioAtTick(-200000)
	require.NoError(t, err)
	_, _, err = pool.Swap(true, cosmath.NewInt(1_000_000), sqrtLimit)
	require.NoError(t, err)

	require.True(t, pool.State.ProtocolFee0.Cmp(uint128.Zero) > 0)
}

func TestOracleCardinalityGrowsOnMintAfterObservationRequest(t *testing.T) {
	pool := newTestPool(t)
	pool.Slot0.ObservationCardinalityNext = 2
	pool.Oracle.Grow(2)
	pool.AdvanceBlock(1012, 1)

	_, _, err := pool.Mint("lp", -600, 600, uint128.From64(1000))
	require.NoError(t, err)
	require.Equal(t, uint16(2), pool.Slot0.ObservationCardinality)
}
