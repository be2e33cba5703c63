package clmmcore

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestGetAmount0DeltaPositiveLiquidity(t *testing.T) {
	sqrtA, err := GetSqrtRatioAtTick(-100)
	require.NoError(t, err)
	sqrtB, err := GetSqrtRatioAtTick(100)
	require.NoError(t, err)

	amt, err := GetAmount0Delta(sqrtA, sqrtB, big.NewInt(1_000_000))
	require.NoError(t, err)
	require.True(t, amt.Sign() > 0)
}

func TestGetAmount0DeltaNegativeLiquidityIsNegationOfPositive(t *testing.T) {
	sqrtA, err := GetSqrtRatioAtTick(-100)
	require.NoError(t, err)
	sqrtB, err := GetSqrtRatioAtTick(100)
	require.NoError(t, err)

	pos, err := GetAmount0Delta(sqrtA, sqrtB, big.NewInt(1_000_000))
	require.NoError(t, err)
	neg, err := GetAmount0Delta(sqrtA, sqrtB, big.NewInt(-1_000_000))
	require.NoError(t, err)

	// Rounding differs by direction (round up for add, down for remove), so
	// the magnitudes can differ by at most 1.
	diff := new(big.Int).Add(pos, neg)
	require.LessOrEqual(t, diff.CmpAbs(big.NewInt(1)), 0)
}

func TestGetNextSqrtPriceFromInputZeroForOne(t *testing.T) {
	sqrtPrice := u256Clone(q96)
	liquidity := new(uint256.Int).Mul(uint256.NewInt(1_000_000), uint256.NewInt(1))
	next, err := GetNextSqrtPriceFromInput(sqrtPrice, liquidity, uint256.NewInt(1000), true)
	require.NoError(t, err)
	require.True(t, next.Lt(sqrtPrice))
}

func TestGetNextSqrtPriceFromInputOneForZero(t *testing.T) {
	sqrtPrice := u256Clone(q96)
	liquidity := uint256.NewInt(1_000_000)
	next, err := GetNextSqrtPriceFromInput(sqrtPrice, liquidity, uint256.NewInt(1000), false)
	require.NoError(t, err)
	require.True(t, next.Gt(sqrtPrice))
}

func TestGetNextSqrtPriceRejectsZeroInputs(t *testing.T) {
	_, err := GetNextSqrtPriceFromInput(u256Zero(), uint256.NewInt(1), uint256.NewInt(1), true)
	require.Error(t, err)
}
