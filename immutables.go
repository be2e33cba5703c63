package clmmcore

import (
	"github.com/ethereum/go-ethereum/common"
	"lukechampine.com/uint128"
)

// TokenInfo is informational only (spec §3: "address + decimals,
// informational") — the core never calls out to chain state to resolve it.
type TokenInfo struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
}

// PoolImmutables holds the values fixed at pool construction (spec §3).
// Shared by value; never mutated once a PoolEngine exists.
type PoolImmutables struct {
	PoolAddress         common.Address
	Fee                 FeeTier
	TickSpacing         int32
	MaxLiquidityPerTick uint128.Uint128
	Token0              TokenInfo
	Token1              TokenInfo
}

// NewPoolImmutables builds the immutables block, deriving tick spacing from
// the fee tier when spacing is zero and deriving max_liquidity_per_tick
// always (spec §3's derivation formula).
func NewPoolImmutables(poolAddress common.Address, fee FeeTier, tickSpacing int32, token0, token1 TokenInfo) (PoolImmutables, error) {
	if tickSpacing == 0 {
		spacing, ok := DefaultTickSpacing(fee)
		if !ok {
			return PoolImmutables{}, newErr(ErrInvalidTickRange, "no default tick spacing for non-standard fee tier", fee)
		}
		tickSpacing = spacing
	}
	return PoolImmutables{
		PoolAddress:         poolAddress,
		Fee:                 fee,
		TickSpacing:         tickSpacing,
		MaxLiquidityPerTick: MaxLiquidityPerTick(tickSpacing),
		Token0:              token0,
		Token1:              token1,
	}, nil
}
