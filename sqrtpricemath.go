package clmmcore

import (
	"math/big"

	"github.com/holiman/uint256"
)

// getAmount0DeltaUnsigned returns the amount of token0 for a liquidity
// position between two sqrt prices, rounding per roundUp (spec §4.3). sqrtA
// and sqrtB may be given in either order; the lower one is used as sqrtA.
func getAmount0DeltaUnsigned(sqrtA, sqrtB *uint256.Int, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtA.Gt(sqrtB) {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	if sqrtA.IsZero() {
		return nil, newErr(ErrDivByZero, "sqrt_price_a must be greater than zero", nil)
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(sqrtB, sqrtA)

	if roundUp {
		inner, err := MulDivRoundingUp(numerator1, numerator2, sqrtB)
		if err != nil {
			return nil, err
		}
		return MulDivRoundingUp(inner, uint256.NewInt(1), sqrtA)
	}
	inner, err := MulDiv(numerator1, numerator2, sqrtB)
	if err != nil {
		return nil, err
	}
	return MulDiv(inner, uint256.NewInt(1), sqrtA)
}

// getAmount1DeltaUnsigned returns the amount of token1 for a liquidity
// position between two sqrt prices, rounding per roundUp (spec §4.3).
func getAmount1DeltaUnsigned(sqrtA, sqrtB *uint256.Int, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtA.Gt(sqrtB) {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	diff := new(uint256.Int).Sub(sqrtB, sqrtA)
	if roundUp {
		return MulDivRoundingUp(liquidity, diff, q96)
	}
	return MulDiv(liquidity, diff, q96)
}

// GetAmount0Delta is the signed wrapper over getAmount0DeltaUnsigned: a
// negative liquidity yields the amount owed back to a position on burn,
// rounded down instead of up (spec §4.3, "signed liquidity").
func GetAmount0Delta(sqrtA, sqrtB *uint256.Int, liquidity *big.Int) (*big.Int, error) {
	neg := liquidity.Sign() < 0
	absLiq := new(big.Int).Abs(liquidity)
	liqU256 := u256FromBig(absLiq)

	amt, err := getAmount0DeltaUnsigned(sqrtA, sqrtB, liqU256, !neg)
	if err != nil {
		return nil, err
	}
	result := amt.ToBig()
	if neg {
		result.Neg(result)
	}
	return result, nil
}

// GetAmount1Delta is the signed wrapper over getAmount1DeltaUnsigned.
func GetAmount1Delta(sqrtA, sqrtB *uint256.Int, liquidity *big.Int) (*big.Int, error) {
	neg := liquidity.Sign() < 0
	absLiq := new(big.Int).Abs(liquidity)
	liqU256 := u256FromBig(absLiq)

	amt, err := getAmount1DeltaUnsigned(sqrtA, sqrtB, liqU256, !neg)
	if err != nil {
		return nil, err
	}
	result := amt.ToBig()
	if neg {
		result.Neg(result)
	}
	return result, nil
}

// getNextSqrtPriceFromAmount0RoundingUp computes the next sqrt price after
// adding or removing amount of token0 (spec §4.3). Rounds up in both the add
// and remove directions so liquidity is never short-changed.
func getNextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity *uint256.Int, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return u256Clone(sqrtPrice), nil
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)

	if add {
		product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPrice)
		if !overflow {
			denominator := new(uint256.Int).Add(numerator1, product)
			if denominator.Cmp(numerator1) >= 0 {
				return MulDivRoundingUp(numerator1, sqrtPrice, denominator)
			}
		}
		// denominator overflowed uint256: fall back to the division-first form.
		quotient := new(uint256.Int).Div(numerator1, sqrtPrice)
		denom := new(uint256.Int).Add(quotient, amount)
		if denom.IsZero() {
			return nil, newErr(ErrDivByZero, "next_sqrt_price_from_amount_0 denominator is zero", nil)
		}
		result := new(uint256.Int).Div(numerator1, denom)
		rem := new(uint256.Int).Mod(numerator1, denom)
		if !rem.IsZero() {
			result = new(uint256.Int).AddUint64(result, 1)
		}
		return result, nil
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPrice)
	if overflow || numerator1.Cmp(product) <= 0 {
		return nil, newErr(ErrPriceLimitOutOfBounds, "amount_0 removal would push price non-positive", nil)
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	result, err := MulDivRoundingUp(numerator1, sqrtPrice, denominator)
	if err != nil {
		return nil, err
	}
	if result.Gt(mask160) {
		return nil, newErr(ErrPriceLimitOutOfBounds, "next sqrt price exceeds u160", nil)
	}
	return result, nil
}

// getNextSqrtPriceFromAmount1RoundingDown computes the next sqrt price after
// adding or removing amount of token1 (spec §4.3). Rounds down in both
// directions for the same reason.
func getNextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity *uint256.Int, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		quotient, err := MulDiv(amount, q96, liquidity)
		if err != nil {
			return nil, err
		}
		result := new(uint256.Int).Add(sqrtPrice, quotient)
		if result.Gt(mask160) {
			return nil, newErr(ErrPriceLimitOutOfBounds, "next sqrt price exceeds u160", nil)
		}
		return result, nil
	}
	quotient, err := MulDivRoundingUp(amount, q96, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPrice.Cmp(quotient) <= 0 {
		return nil, newErr(ErrPriceLimitOutOfBounds, "sqrt price cannot go below quotient", nil)
	}
	return new(uint256.Int).Sub(sqrtPrice, quotient), nil
}

// GetNextSqrtPriceFromInput routes to the amount0/amount1 helper by swap
// direction (spec §4.3).
func GetNextSqrtPriceFromInput(sqrtPrice, liquidity *uint256.Int, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return nil, newErr(ErrInvalidPriceLimit, "sqrt_price and liquidity must be nonzero", nil)
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput routes to the amount0/amount1 helper by swap
// direction, for the exact-output case (spec §4.3).
func GetNextSqrtPriceFromOutput(sqrtPrice, liquidity *uint256.Int, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return nil, newErr(ErrInvalidPriceLimit, "sqrt_price and liquidity must be nonzero", nil)
	}
	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPrice, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPrice, liquidity, amountOut, false)
}
