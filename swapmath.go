package clmmcore

import (
	"math/big"

	"github.com/holiman/uint256"
)

// SwapStep is the result of a single tick-crossing step of a swap (spec
// §4.4): the price the step landed on and the three token amounts moved.
type SwapStep struct {
	SqrtPriceNext *uint256.Int
	AmountIn      *uint256.Int
	AmountOut     *uint256.Int
	FeeAmount     *uint256.Int
}

// ComputeSwapStep advances a swap from sqrtPriceCurrent towards
// sqrtPriceTarget by as much of amountRemaining as liquidity allows in one
// step, charging feePips along the way (spec §4.4). amountRemaining is
// signed: positive means exact-input, negative means exact-output, matching
// the reference protocol's convention.
func ComputeSwapStep(sqrtPriceCurrent, sqrtPriceTarget *uint256.Int, liquidity *uint256.Int, amountRemaining *big.Int, feePips FeeTier) (SwapStep, error) {
	zeroForOne := sqrtPriceCurrent.Cmp(sqrtPriceTarget) >= 0
	exactIn := amountRemaining.Sign() >= 0

	feeU256 := uint256.NewInt(uint64(feePips))
	oneMillion := uint256.NewInt(feeBaseDiv)

	var sqrtPriceNext *uint256.Int
	var amountIn, amountOut *uint256.Int

	liquidityBig := new(big.Int).Set(liquidity.ToBig())

	if exactIn {
		remainingLessFee, err := MulDiv(u256FromBig(amountRemaining), new(uint256.Int).Sub(oneMillion, feeU256), oneMillion)
		if err != nil {
			return SwapStep{}, err
		}

		var inBig *big.Int
		if zeroForOne {
			inBig, err = GetAmount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidityBig)
		} else {
			inBig, err = GetAmount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidityBig)
		}
		if err != nil {
			return SwapStep{}, err
		}
		amountIn = u256FromBig(inBig)

		if remainingLessFee.Cmp(amountIn) >= 0 {
			sqrtPriceNext = u256Clone(sqrtPriceTarget)
		} else {
			sqrtPriceNext, err = GetNextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, remainingLessFee, zeroForOne)
			if err != nil {
				return SwapStep{}, err
			}
		}
	} else {
		absRemaining := new(big.Int).Neg(amountRemaining)
		absRemainingU256 := u256FromBig(absRemaining)

		var outBig *big.Int
		var err error
		if zeroForOne {
			outBig, err = GetAmount1Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidityBig)
		} else {
			outBig, err = GetAmount0Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidityBig)
		}
		if err != nil {
			return SwapStep{}, err
		}
		amountOut = u256FromBig(outBig)

		if absRemainingU256.Cmp(amountOut) >= 0 {
			sqrtPriceNext = u256Clone(sqrtPriceTarget)
		} else {
			sqrtPriceNext, err = GetNextSqrtPriceFromOutput(sqrtPriceCurrent, liquidity, absRemainingU256, zeroForOne)
			if err != nil {
				return SwapStep{}, err
			}
		}
	}

	atMax := sqrtPriceTarget.Eq(sqrtPriceNext)

	var err error
	if zeroForOne {
		if !(atMax && exactIn) {
			var inBig *big.Int
			inBig, err = GetAmount0Delta(sqrtPriceNext, sqrtPriceCurrent, liquidityBig)
			if err != nil {
				return SwapStep{}, err
			}
			amountIn = u256FromBig(inBig)
		}
		if !(atMax && !exactIn) {
			var outBig *big.Int
			outBig, err = GetAmount1Delta(sqrtPriceNext, sqrtPriceCurrent, liquidityBig)
			if err != nil {
				return SwapStep{}, err
			}
			amountOut = u256FromBig(outBig)
		}
	} else {
		if !(atMax && exactIn) {
			var inBig *big.Int
			inBig, err = GetAmount1Delta(sqrtPriceCurrent, sqrtPriceNext, liquidityBig)
			if err != nil {
				return SwapStep{}, err
			}
			amountIn = u256FromBig(inBig)
		}
		if !(atMax && !exactIn) {
			var outBig *big.Int
			outBig, err = GetAmount0Delta(sqrtPriceCurrent, sqrtPriceNext, liquidityBig)
			if err != nil {
				return SwapStep{}, err
			}
			amountOut = u256FromBig(outBig)
		}
	}

	if !exactIn {
		absRemaining := new(big.Int).Neg(amountRemaining)
		absRemainingU256 := u256FromBig(absRemaining)
		if amountOut.Cmp(absRemainingU256) > 0 {
			amountOut = absRemainingU256
		}
	}

	var feeAmount *uint256.Int
	if exactIn && !sqrtPriceNext.Eq(sqrtPriceTarget) {
		feeAmount = new(uint256.Int).Sub(u256FromBig(amountRemaining), amountIn)
	} else {
		feeAmount, err = MulDivRoundingUp(amountIn, feeU256, new(uint256.Int).Sub(oneMillion, feeU256))
		if err != nil {
			return SwapStep{}, err
		}
	}

	return SwapStep{
		SqrtPriceNext: sqrtPriceNext,
		AmountIn:      amountIn,
		AmountOut:     amountOut,
		FeeAmount:     feeAmount,
	}, nil
}
