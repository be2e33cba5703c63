package clmmcore

import "github.com/holiman/uint256"

// MulDiv computes floor(a*b/d) over a full 512-bit intermediate product, the
// same contract as the reference protocol's FullMath.mulDiv (spec §4.1).
//
// holiman/uint256's MulDivOverflow already performs the multiply in 512 bits
// internally before dividing, so this is exact: it never rounds through a
// float and never truncates the intermediate product, only the final
// division.
func MulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, newErr(ErrDivByZero, "mul_div divisor is zero", nil)
	}
	z := new(uint256.Int)
	_, overflow := z.MulDivOverflow(a, b, d)
	if overflow {
		return nil, newErr(ErrMulDivOverflow, "mul_div result exceeds uint256", nil)
	}
	return z, nil
}

// MulDivRoundingUp computes ceil(a*b/d), failing Overflow if rounding up
// would push the result past 2^256-1 (spec §4.1).
func MulDivRoundingUp(a, b, d *uint256.Int) (*uint256.Int, error) {
	z, err := MulDiv(a, b, d)
	if err != nil {
		return nil, err
	}
	rem := new(uint256.Int).MulMod(a, b, d)
	if rem.IsZero() {
		return z, nil
	}
	if z.Eq(maxUint256) {
		return nil, newErr(ErrMulDivOverflow, "mul_div_rounding_up overflow", nil)
	}
	return new(uint256.Int).AddUint64(z, 1), nil
}
