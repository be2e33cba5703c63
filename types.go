package clmmcore

import (
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// u128FromBig converts a non-negative big.Int that fits in 128 bits into a
// lukechampine.com/uint128.Uint128, the wire-level type used for every u128
// field in the data model (liquidity, liquidity_gross, tokens_owed,
// protocol_fee).
func u128FromBig(i *big.Int) (uint128.Uint128, error) {
	if i.Sign() < 0 {
		return uint128.Zero, newErr(ErrLiquidityOverflow, "negative u128", i.String())
	}
	if i.BitLen() > 128 {
		return uint128.Zero, newErr(ErrLiquidityOverflow, "exceeds u128 range", i.String())
	}
	return uint128.FromBig(i), nil
}

func u128ToBig(u uint128.Uint128) *big.Int {
	return u.Big()
}

var maxU128Big = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// i128 range, used to bound liquidity_net (signed).
var (
	maxI128Big = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128Big = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

func checkI128Range(i *big.Int) error {
	if i.Cmp(maxI128Big) > 0 || i.Cmp(minI128Big) < 0 {
		return newErr(ErrLiquidityOverflow, "exceeds i128 range", i.String())
	}
	return nil
}

// u256FromBig converts a big.Int (sign discarded by the caller's contract)
// into a holiman/uint256.Int, the wrapping fixed-point type used for every
// u256/u160 accumulator (fee_growth_global, fee_growth_outside,
// seconds_per_liquidity).
func u256FromBig(i *big.Int) *uint256.Int {
	z := new(uint256.Int)
	z.SetFromBig(i)
	return z
}

func u256Zero() *uint256.Int { return new(uint256.Int) }

func u256Clone(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Set(x)
}

// wrapU160 masks x down to its low 160 bits, the wraparound modulus for
// seconds_per_liquidity_cumulative (spec §3, §9: "u160... wrapping").
func wrapU160(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).And(x, mask160)
}

// wrap56 masks a signed tick-cumulative value to 56 bits, two's-complement,
// matching the reference protocol's int56 overflow behavior (spec §9: "wrap
// modulo 2^56").
func wrap56(v int64) int64 {
	const bits = 56
	mask := int64(1)<<bits - 1
	v &= mask
	if v&(int64(1)<<(bits-1)) != 0 {
		v -= int64(1) << bits
	}
	return v
}
