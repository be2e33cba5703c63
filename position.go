package clmmcore

import (
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// PositionKey identifies a Position by (owner, tick_lower, tick_upper), per
// spec §3. Owner is a plain string so the core stays free of any particular
// address encoding.
type PositionKey struct {
	Owner     string
	TickLower int32
	TickUpper int32
}

// Position holds one liquidity range's accounting (spec §3). It persists
// through liquidity==0 so outstanding fees remain collectible.
type Position struct {
	Liquidity              uint128.Uint128
	FeeGrowthInside0Last   *uint256.Int
	FeeGrowthInside1Last   *uint256.Int
	TokensOwed0            uint128.Uint128
	TokensOwed1            uint128.Uint128
}

func newPosition() *Position {
	return &Position{
		Liquidity:            uint128.Zero,
		FeeGrowthInside0Last: u256Zero(),
		FeeGrowthInside1Last: u256Zero(),
		TokensOwed0:          uint128.Zero,
		TokensOwed1:          uint128.Zero,
	}
}

func (p *Position) clone() *Position {
	return &Position{
		Liquidity:            p.Liquidity,
		FeeGrowthInside0Last: u256Clone(p.FeeGrowthInside0Last),
		FeeGrowthInside1Last: u256Clone(p.FeeGrowthInside1Last),
		TokensOwed0:          p.TokensOwed0,
		TokensOwed1:          p.TokensOwed1,
	}
}

// PositionTable is the (owner, tick_lower, tick_upper) -> Position map from
// spec §4.6.
type PositionTable struct {
	positions map[PositionKey]*Position
}

func NewPositionTable() *PositionTable {
	return &PositionTable{positions: make(map[PositionKey]*Position)}
}

func (pt *PositionTable) Get(key PositionKey) (*Position, bool) {
	p, ok := pt.positions[key]
	return p, ok
}

func (pt *PositionTable) set(key PositionKey, p *Position) {
	pt.positions[key] = p
}

// applyUpdate computes the post-update Position for a (possibly absent)
// existing position, without deciding whether the result gets stored. Shared
// by the committing and dry-run paths of update_position (spec §4.6) so the
// two can never drift.
func applyUpdate(existing *Position, deltaL *big.Int, feeGrowthInside0, feeGrowthInside1 *uint256.Int) (*Position, error) {
	pos := existing
	if pos == nil {
		pos = newPosition()
	} else {
		pos = pos.clone()
	}

	liquidityBefore := u128ToBig(pos.Liquidity)

	deltaFees0 := new(uint256.Int).Sub(feeGrowthInside0, pos.FeeGrowthInside0Last)
	deltaFees1 := new(uint256.Int).Sub(feeGrowthInside1, pos.FeeGrowthInside1Last)

	owedDelta0, err := MulDiv(deltaFees0, u256FromBig(liquidityBefore), q128)
	if err != nil {
		return nil, err
	}
	owedDelta1, err := MulDiv(deltaFees1, u256FromBig(liquidityBefore), q128)
	if err != nil {
		return nil, err
	}

	newOwed0 := new(big.Int).Add(u128ToBig(pos.TokensOwed0), owedDelta0.ToBig())
	newOwed1 := new(big.Int).Add(u128ToBig(pos.TokensOwed1), owedDelta1.ToBig())
	tokensOwed0, err := u128FromBig(newOwed0)
	if err != nil {
		return nil, err
	}
	tokensOwed1, err := u128FromBig(newOwed1)
	if err != nil {
		return nil, err
	}

	liquidityNew := new(big.Int).Add(liquidityBefore, deltaL)
	liquidityNewU128, err := u128FromBig(liquidityNew)
	if err != nil {
		return nil, err
	}

	pos.Liquidity = liquidityNewU128
	pos.TokensOwed0 = tokensOwed0
	pos.TokensOwed1 = tokensOwed1
	pos.FeeGrowthInside0Last = u256Clone(feeGrowthInside0)
	pos.FeeGrowthInside1Last = u256Clone(feeGrowthInside1)
	return pos, nil
}

// UpdatePosition implements spec §4.6's update_position. deltaL is signed;
// feeGrowthInside0/1 are the current fee-growth-inside values for this
// position's range. Mutates and stores the position.
func (pt *PositionTable) UpdatePosition(key PositionKey, deltaL *big.Int, feeGrowthInside0, feeGrowthInside1 *uint256.Int) (*Position, error) {
	existing, had := pt.positions[key]
	if deltaL.Sign() == 0 && !had {
		return nil, newErr(ErrUninitializedPositionPoke, "poke of uninitialized position", key)
	}
	pos, err := applyUpdate(existing, deltaL, feeGrowthInside0, feeGrowthInside1)
	if err != nil {
		return nil, err
	}
	pt.set(key, pos)
	return pos, nil
}

// PeekUpdate computes the same result as UpdatePosition without storing it —
// the dry-run path spec §4.8's burn(commit=false) needs to value a position
// without mutating it. Operates on a deep copy of the stored record.
func (pt *PositionTable) PeekUpdate(key PositionKey, deltaL *big.Int, feeGrowthInside0, feeGrowthInside1 *uint256.Int) (*Position, error) {
	existing, had := pt.positions[key]
	if deltaL.Sign() == 0 && !had {
		return nil, newErr(ErrUninitializedPositionPoke, "poke of uninitialized position", key)
	}
	return applyUpdate(existing, deltaL, feeGrowthInside0, feeGrowthInside1)
}

// AddTokensOwed credits amount0/amount1 (already-settled token deltas, e.g.
// from a burn) onto a position's owed balances, independent of the
// fee-growth bookkeeping in UpdatePosition. amount0/amount1 must be
// non-negative.
func (pt *PositionTable) AddTokensOwed(key PositionKey, amount0, amount1 *big.Int) error {
	pos, ok := pt.positions[key]
	if !ok {
		return newErr(ErrUninitializedPositionPoke, "add_tokens_owed on uninitialized position", key)
	}
	newOwed0 := new(big.Int).Add(u128ToBig(pos.TokensOwed0), amount0)
	newOwed1 := new(big.Int).Add(u128ToBig(pos.TokensOwed1), amount1)
	owed0, err := u128FromBig(newOwed0)
	if err != nil {
		return err
	}
	owed1, err := u128FromBig(newOwed1)
	if err != nil {
		return err
	}
	pos.TokensOwed0 = owed0
	pos.TokensOwed1 = owed1
	return nil
}

// Collect pays out up to (amount0Requested, amount1Requested) from a
// position's owed balances, clamped to what's actually owed — the only
// values spec §3 calls "safe to pay out".
func (pt *PositionTable) Collect(key PositionKey, amount0Requested, amount1Requested uint128.Uint128) (uint128.Uint128, uint128.Uint128, error) {
	pos, ok := pt.positions[key]
	if !ok {
		return uint128.Zero, uint128.Zero, newErr(ErrUninitializedPositionPoke, "collect on uninitialized position", key)
	}
	amount0 := amount0Requested
	if amount0.Cmp(pos.TokensOwed0) > 0 {
		amount0 = pos.TokensOwed0
	}
	amount1 := amount1Requested
	if amount1.Cmp(pos.TokensOwed1) > 0 {
		amount1 = pos.TokensOwed1
	}
	pos.TokensOwed0 = pos.TokensOwed0.Sub(amount0)
	pos.TokensOwed1 = pos.TokensOwed1.Sub(amount1)
	return amount0, amount1, nil
}

// FeeGrowthInside computes gg - below - above for each token (spec §4.6),
// under u256 wraparound.
func FeeGrowthInside(tt *TickTable, tickLower, tickUpper, tickCurrent int32, gg0, gg1 *uint256.Int) (*uint256.Int, *uint256.Int) {
	lower, lowerOk := tt.Get(tickLower)
	upper, upperOk := tt.Get(tickUpper)

	var below0, below1 *uint256.Int
	if tickCurrent >= tickLower {
		if lowerOk {
			below0, below1 = lower.FeeGrowthOutside0, lower.FeeGrowthOutside1
		} else {
			below0, below1 = u256Zero(), u256Zero()
		}
	} else {
		if lowerOk {
			below0 = new(uint256.Int).Sub(gg0, lower.FeeGrowthOutside0)
			below1 = new(uint256.Int).Sub(gg1, lower.FeeGrowthOutside1)
		} else {
			below0, below1 = u256Clone(gg0), u256Clone(gg1)
		}
	}

	var above0, above1 *uint256.Int
	if tickCurrent < tickUpper {
		if upperOk {
			above0, above1 = upper.FeeGrowthOutside0, upper.FeeGrowthOutside1
		} else {
			above0, above1 = u256Zero(), u256Zero()
		}
	} else {
		if upperOk {
			above0 = new(uint256.Int).Sub(gg0, upper.FeeGrowthOutside0)
			above1 = new(uint256.Int).Sub(gg1, upper.FeeGrowthOutside1)
		} else {
			above0, above1 = u256Clone(gg0), u256Clone(gg1)
		}
	}

	inside0 := new(uint256.Int).Sub(new(uint256.Int).Sub(gg0, below0), above0)
	inside1 := new(uint256.Int).Sub(new(uint256.Int).Sub(gg1, below1), above1)
	return inside0, inside1
}
