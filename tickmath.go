package clmmcore

import (
	"math/big"

	"github.com/holiman/uint256"
)

// ratioFactors are the 20 precomputed Q128.128 factors for
// sqrt(1.0001)^(2^i), i = 0..19, used to build sqrt(1.0001^|tick|) via the
// standard bit-decomposition of |tick| (spec §4.2): MaxTick's bit length is
// 20, so the decomposition needs a factor up through bit 19. These are the
// same magic constants as the reference protocol's TickMath.
var ratioFactors = [20]*uint256.Int{
	mustHex("fffcb933bd6fad37aa2d162d1a594001"),
	mustHex("fff97272373d413259a46990580e213a"),
	mustHex("fff2e50f5f656932ef12357cf3c7fdcc"),
	mustHex("ffe5caca7e10e4e61c3624eaa0941cd0"),
	mustHex("ffcb9843d60f6159c9db58835c926644"),
	mustHex("ff973b41fa98c081472e6896dfb254c0"),
	mustHex("ff2ea16466c96a3843ec78b326b52861"),
	mustHex("fe5dee046a99a2a811c461f1969c3053"),
	mustHex("fcbe86c7900a88aedcffc83b479aa3a4"),
	mustHex("f987a7253ac413176f2b074cf7815e54"),
	mustHex("f3392b0822b70005940c7a398e4b70f3"),
	mustHex("e7159475a2c29b7443b29c7fa6e889d9"),
	mustHex("d097f3bdfd2022b8845ad8f792aa5826"),
	mustHex("a9f746462d870fdf8a65dc1f90e061e5"),
	mustHex("70d869a156d2a1b890bb3df62baf32f7"),
	mustHex("31be135f97d08fd981231505542fcfa6"),
	mustHex("09aa508b5b7a84e1c677de54f3e99bc9"),
	mustHex("005d6af8dedb81196699c329225ee604"),
	mustHex("00002216e584f5fa1ea926041bedfe98"),
	mustHex("00000000048a170391f7dc42444e8fa2"),
}

func mustHex(h string) *uint256.Int {
	z, err := uint256.FromHex("0x" + h)
	if err != nil {
		panic(err)
	}
	return z
}

// GetSqrtRatioAtTick returns floor(sqrt(1.0001^tick) * 2^96) as a UQ64.96
// value (spec §4.2). Fails OutOfRangeTick if |tick| > MaxTick.
func GetSqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}
	if absTick > MaxTick {
		return nil, newErr(ErrOutOfRangeTick, "tick outside [MinTick, MaxTick]", tick)
	}

	var ratio *uint256.Int
	if absTick&0x1 != 0 {
		ratio = u256Clone(ratioFactors[0])
	} else {
		ratio = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	}
	for i := 1; i < 20; i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio = new(uint256.Int).Rsh(new(uint256.Int).Mul(ratio, ratioFactors[i]), 128)
		}
	}

	if tick > 0 {
		ratio = new(uint256.Int).Div(maxUint256, ratio)
	}

	// Downshift from Q128.128 to Q128.96, rounding up so that
	// get_tick_at_sqrt_ratio(get_sqrt_ratio_at_tick(t)) round-trips.
	shifted := new(uint256.Int).Rsh(ratio, 32)
	remainder := new(uint256.Int).And(ratio, uint256.NewInt(1<<32-1))
	if !remainder.IsZero() {
		shifted = new(uint256.Int).AddUint64(shifted, 1)
	}
	return shifted, nil
}

// Precomputed constants for get_tick_at_sqrt_ratio's log2 refinement,
// matching the reference protocol's TickMath bit-exact.
var (
	logSqrt10001Mul = mustDecimal("255738958999603826347141")
	tickLowOffset   = mustDecimal("3402992956809132418596140100660247210")
	tickHighOffset  = mustDecimal("291339464771989622907027621153398088495")
)

func mustDecimal(s string) *big.Int {
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid decimal constant: " + s)
	}
	return z
}

// GetTickAtSqrtRatio returns the greatest tick whose GetSqrtRatioAtTick is
// <= sp (spec §4.2). Fails OutOfRangeSqrtPrice outside [MinSqrtRatio,
// MaxSqrtRatio).
func GetTickAtSqrtRatio(sp *uint256.Int) (int32, error) {
	if sp.Lt(minSqrtRatio) || sp.Cmp(maxSqrtRatio) >= 0 {
		return 0, newErr(ErrOutOfRangeSqrtPrice, "sqrt ratio outside [MinSqrtRatio, MaxSqrtRatio)", sp.Dec())
	}

	ratio := new(big.Int).Lsh(sp.ToBig(), 32)
	msb := ratio.BitLen() - 1

	var r *big.Int
	if msb >= 128 {
		r = new(big.Int).Rsh(ratio, uint(msb-127))
	} else {
		r = new(big.Int).Lsh(ratio, uint(127-msb))
	}

	log2 := new(big.Int).Lsh(big.NewInt(int64(msb-128)), 64)

	mask256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	for shift := 63; shift >= 50; shift-- {
		r = new(big.Int).Rsh(new(big.Int).Mul(r, r), 127)
		r.And(r, mask256)
		f := new(big.Int).Rsh(r, 128)
		log2.Or(log2, new(big.Int).Lsh(f, uint(shift)))
		r = new(big.Int).Rsh(r, uint(f.Int64()))
	}

	logSqrt10001 := new(big.Int).Mul(log2, logSqrt10001Mul)

	tickLowBig := new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, tickLowOffset), 128)
	tickHighBig := new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, tickHighOffset), 128)

	tickLow := int32(tickLowBig.Int64())
	tickHigh := int32(tickHighBig.Int64())

	if tickLow == tickHigh {
		return tickLow, nil
	}
	hiRatio, err := GetSqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if hiRatio.Cmp(sp) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}
