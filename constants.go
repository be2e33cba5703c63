package clmmcore

import "github.com/holiman/uint256"

// Tick bounds, mirrored bit-exact from the on-chain reference implementation.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// Q96 and Q128 fixed-point scaling factors.
var (
	q96  = new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

	// minSqrtRatio / maxSqrtRatio are the sqrt(1.0001^tick) values at MinTick / MaxTick,
	// fixed bit-exact per the reference protocol.
	minSqrtRatio = uint256.MustFromDecimal("4295128739")
	maxSqrtRatio = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	maxUint256 = new(uint256.Int).Not(uint256.NewInt(0))

	mask160 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))
)

// FeeTier is expressed in hundredths of a basis point (1e-6), matching the
// reference protocol's `fee` units (so 3000 == 0.3%).
type FeeTier uint32

const (
	FeeLowest  FeeTier = 100
	FeeLow     FeeTier = 500
	FeeMedium  FeeTier = 3000
	FeeHigh    FeeTier = 10000
	feeBaseDiv         = 1_000_000
)

// defaultTickSpacings maps the standard fee tiers to their default tick
// spacing, as in the reference deployment's fee-tier registry.
var defaultTickSpacings = map[FeeTier]int32{
	FeeLowest: 1,
	FeeLow:    10,
	FeeMedium: 60,
	FeeHigh:   200,
}

// DefaultTickSpacing returns the standard tick spacing for a fee tier, and
// false if the tier isn't one of the four standard tiers.
func DefaultTickSpacing(fee FeeTier) (int32, bool) {
	spacing, ok := defaultTickSpacings[fee]
	return spacing, ok
}
