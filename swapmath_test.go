package clmmcore

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestComputeSwapStepExactInCappedByLiquidity(t *testing.T) {
	sqrtCurrent := u256Clone(q96)
	sqrtTarget, err := GetSqrtRatioAtTick(-100)
	require.NoError(t, err)
	liquidity := uint256.NewInt(2_000_000)

	step, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, big.NewInt(1000), FeeMedium)
	require.NoError(t, err)

	require.True(t, step.AmountIn.Sign() >= 0)
	require.True(t, step.AmountOut.Sign() >= 0)
	require.True(t, step.FeeAmount.Sign() >= 0)
	// Amount spent (in + fee) never exceeds what was offered.
	spent := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
	require.True(t, spent.Cmp(uint256.NewInt(1000)) <= 0)
}

func TestComputeSwapStepReachesTargetWhenInputAmple(t *testing.T) {
	sqrtCurrent := u256Clone(q96)
	sqrtTarget, err := GetSqrtRatioAtTick(-1)
	require.NoError(t, err)
	liquidity := new(uint256.Int).Lsh(uint256.NewInt(1), 64)

	// Moving 2^64 liquidity from tick 0 to tick -1 takes about 9.2e14 of
	// token0; 1e18 less the 0.3% fee is far more than that.
	step, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, big.NewInt(1_000_000_000_000_000_000), FeeMedium)
	require.NoError(t, err)
	require.Equal(t, sqrtTarget.String(), step.SqrtPriceNext.String())
}

func TestComputeSwapStepExactOutput(t *testing.T) {
	sqrtCurrent := u256Clone(q96)
	sqrtTarget, err := GetSqrtRatioAtTick(-100)
	require.NoError(t, err)
	liquidity := new(uint256.Int).Lsh(uint256.NewInt(1), 64)

	step, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, big.NewInt(-1000), FeeMedium)
	require.NoError(t, err)
	require.True(t, step.AmountOut.Cmp(uint256.NewInt(1000)) <= 0)
}

func TestComputeSwapStepFeeChargedOnPartialFill(t *testing.T) {
	sqrtCurrent := u256Clone(q96)
	sqrtTarget, err := GetSqrtRatioAtTick(-100)
	require.NoError(t, err)
	liquidity := uint256.NewInt(1_000_000)

	step, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, big.NewInt(10), FeeHigh)
	require.NoError(t, err)
	// At FeeHigh (1%) with a tiny remaining amount the step doesn't reach the
	// target, so fee_amount must be the leftover after subtracting amount_in.
	if !step.SqrtPriceNext.Eq(sqrtTarget) {
		want := new(uint256.Int).Sub(uint256.NewInt(10), step.AmountIn)
		require.Equal(t, want.String(), step.FeeAmount.String())
	}
}
