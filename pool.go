package clmmcore

import (
	"math/big"

	cosmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"
)

// Slot0 is the pool's singleton price/observation cursor (spec §3).
type Slot0 struct {
	SqrtPrice                  *uint256.Int
	Tick                       int32
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
}

// feeProtocol0 returns the token0 protocol-fee share (low nibble).
func (s Slot0) feeProtocol0() uint8 { return s.FeeProtocol & 0x0F }

// feeProtocol1 returns the token1 protocol-fee share (high nibble).
func (s Slot0) feeProtocol1() uint8 { return s.FeeProtocol >> 4 }

// PoolState is the mutable accounting block outside Slot0 (spec §3).
type PoolState struct {
	Liquidity         uint128.Uint128
	FeeGrowthGlobal0  *uint256.Int
	FeeGrowthGlobal1  *uint256.Int
	Balance0          *big.Int // i256, may go negative before settlement
	Balance1          *big.Int
	ProtocolFee0      uint128.Uint128
	ProtocolFee1      uint128.Uint128
}

// PoolEngine orchestrates Slot0, PoolState, the TickTable, PositionTable and
// OracleRing behind mint/burn/swap (spec §4.8). It owns all of its mutable
// state exclusively (spec §5) — callers serialize access themselves.
type PoolEngine struct {
	Immutables     PoolImmutables
	Slot0          Slot0
	State          PoolState
	Ticks          *TickTable
	Positions      *PositionTable
	Oracle         *OracleRing
	BlockTimestamp uint32
	BlockNumber    uint64
}

// NewPool constructs an empty pool at initialSqrtPrice (Q96, 1:1 if nil),
// the two-constructor split spec §6 calls for ("empty pool" vs
// "snapshot-load", the latter in snapshot.go).
func NewPool(immutables PoolImmutables, initialSqrtPrice *uint256.Int, initialTimestamp uint32) (*PoolEngine, error) {
	if initialSqrtPrice == nil {
		initialSqrtPrice = u256Clone(q96)
	}
	tick, err := GetTickAtSqrtRatio(initialSqrtPrice)
	if err != nil {
		return nil, err
	}
	return &PoolEngine{
		Immutables: immutables,
		Slot0: Slot0{
			SqrtPrice:                  u256Clone(initialSqrtPrice),
			Tick:                       tick,
			ObservationIndex:           0,
			ObservationCardinality:     1,
			ObservationCardinalityNext: 1,
			FeeProtocol:                0,
		},
		State: PoolState{
			Liquidity:        uint128.Zero,
			FeeGrowthGlobal0: u256Zero(),
			FeeGrowthGlobal1: u256Zero(),
			Balance0:         new(big.Int),
			Balance1:         new(big.Int),
			ProtocolFee0:     uint128.Zero,
			ProtocolFee1:     uint128.Zero,
		},
		Ticks:          NewTickTable(),
		Positions:      NewPositionTable(),
		Oracle:         NewOracleRing(1, initialTimestamp),
		BlockTimestamp: initialTimestamp,
		BlockNumber:    0,
	}, nil
}

// AdvanceBlock moves the engine's clock forward. The core never reads a wall
// clock itself (spec §1 Non-goals: no I/O) — the host supplies block time
// before calling mint/burn/swap.
func (p *PoolEngine) AdvanceBlock(timestamp uint32, blockNumber uint64) {
	p.BlockTimestamp = timestamp
	p.BlockNumber = blockNumber
}

func (p *PoolEngine) checkTicks(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return newErr(ErrInvalidTickRange, "tick_lower must be less than tick_upper", [2]int32{tickLower, tickUpper})
	}
	if tickLower < MinTick || tickUpper > MaxTick {
		return newErr(ErrInvalidTickRange, "ticks outside [MinTick, MaxTick]", [2]int32{tickLower, tickUpper})
	}
	spacing := p.Immutables.TickSpacing
	if tickLower%spacing != 0 || tickUpper%spacing != 0 {
		return newErr(ErrTicksNotSpaced, "ticks not divisible by tick_spacing", [2]int32{tickLower, tickUpper})
	}
	return nil
}

// observeCurrent reads (tick_cumulative, seconds_per_liquidity_cumulative)
// as of the engine's current block, lazily transforming the latest
// observation if needed (spec §4.7 observe_single, secs_ago=0).
func (p *PoolEngine) observeCurrent() (int64, *uint256.Int, error) {
	return p.Oracle.ObserveSingle(p.BlockTimestamp, 0, p.Slot0.Tick, p.Slot0.ObservationIndex, p.State.Liquidity, p.Slot0.ObservationCardinality)
}

// writeOracleObservation records an observation using the pre-mutation tick
// and liquidity (spec §4.8 step 4 / §4.8 modify_position step 4: "write an
// oracle observation").
func (p *PoolEngine) writeOracleObservation() {
	index, cardinality := p.Oracle.Write(p.Slot0.ObservationIndex, p.BlockTimestamp, p.Slot0.Tick, p.State.Liquidity, p.Slot0.ObservationCardinality, p.Slot0.ObservationCardinalityNext)
	p.Slot0.ObservationIndex = index
	p.Slot0.ObservationCardinality = cardinality
}

func addDeltaU128(base uint128.Uint128, delta *big.Int) (uint128.Uint128, error) {
	sum := new(big.Int).Add(u128ToBig(base), delta)
	return u128FromBig(sum)
}

// updatePosition implements spec §4.6's update_position plus the tick-side
// bookkeeping from §4.5, threading the commit flag through so the dry-run
// (burn commit=false) path never mutates TickTable or PositionTable.
func (p *PoolEngine) updatePosition(owner string, tickLower, tickUpper int32, deltaL *big.Int, commit bool) (*Position, bool, bool, error) {
	key := PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}

	var flippedLower, flippedUpper bool
	if deltaL.Sign() != 0 && commit {
		tickCumulative, splCumulative, err := p.observeCurrent()
		if err != nil {
			return nil, false, false, err
		}
		flippedLower, err = p.Ticks.UpdateTick(tickLower, p.Slot0.Tick, deltaL, p.State.FeeGrowthGlobal0, p.State.FeeGrowthGlobal1, splCumulative, tickCumulative, p.BlockTimestamp, false, p.Immutables.MaxLiquidityPerTick)
		if err != nil {
			return nil, false, false, err
		}
		flippedUpper, err = p.Ticks.UpdateTick(tickUpper, p.Slot0.Tick, deltaL, p.State.FeeGrowthGlobal0, p.State.FeeGrowthGlobal1, splCumulative, tickCumulative, p.BlockTimestamp, true, p.Immutables.MaxLiquidityPerTick)
		if err != nil {
			return nil, false, false, err
		}
	}

	fi0, fi1 := FeeGrowthInside(p.Ticks, tickLower, tickUpper, p.Slot0.Tick, p.State.FeeGrowthGlobal0, p.State.FeeGrowthGlobal1)

	var position *Position
	var err error
	if commit {
		position, err = p.Positions.UpdatePosition(key, deltaL, fi0, fi1)
	} else {
		position, err = p.Positions.PeekUpdate(key, deltaL, fi0, fi1)
	}
	if err != nil {
		return nil, false, false, err
	}
	return position, flippedLower, flippedUpper, nil
}

// modifyPosition implements spec §4.8's modify_position.
func (p *PoolEngine) modifyPosition(owner string, tickLower, tickUpper int32, deltaL *big.Int, commit bool) (*Position, *big.Int, *big.Int, error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return nil, nil, nil, err
	}

	position, flippedLower, flippedUpper, err := p.updatePosition(owner, tickLower, tickUpper, deltaL, commit)
	if err != nil {
		return nil, nil, nil, err
	}

	amount0 := new(big.Int)
	amount1 := new(big.Int)

	if deltaL.Sign() != 0 {
		tickCurrent := p.Slot0.Tick
		switch {
		case tickCurrent < tickLower:
			sqrtLower, err := GetSqrtRatioAtTick(tickLower)
			if err != nil {
				return nil, nil, nil, err
			}
			sqrtUpper, err := GetSqrtRatioAtTick(tickUpper)
			if err != nil {
				return nil, nil, nil, err
			}
			amount0, err = GetAmount0Delta(sqrtLower, sqrtUpper, deltaL)
			if err != nil {
				return nil, nil, nil, err
			}
		case tickCurrent < tickUpper:
			sqrtUpper, err := GetSqrtRatioAtTick(tickUpper)
			if err != nil {
				return nil, nil, nil, err
			}
			sqrtLower, err := GetSqrtRatioAtTick(tickLower)
			if err != nil {
				return nil, nil, nil, err
			}
			amount0, err = GetAmount0Delta(p.Slot0.SqrtPrice, sqrtUpper, deltaL)
			if err != nil {
				return nil, nil, nil, err
			}
			amount1, err = GetAmount1Delta(sqrtLower, p.Slot0.SqrtPrice, deltaL)
			if err != nil {
				return nil, nil, nil, err
			}
			if commit {
				p.writeOracleObservation()
				newLiquidity, err := addDeltaU128(p.State.Liquidity, deltaL)
				if err != nil {
					return nil, nil, nil, err
				}
				p.State.Liquidity = newLiquidity
			}
		default:
			sqrtLower, err := GetSqrtRatioAtTick(tickLower)
			if err != nil {
				return nil, nil, nil, err
			}
			sqrtUpper, err := GetSqrtRatioAtTick(tickUpper)
			if err != nil {
				return nil, nil, nil, err
			}
			amount1, err = GetAmount1Delta(sqrtLower, sqrtUpper, deltaL)
			if err != nil {
				return nil, nil, nil, err
			}
		}
	}

	if commit && deltaL.Sign() < 0 {
		if flippedLower {
			p.Ticks.Clear(tickLower)
		}
		if flippedUpper {
			p.Ticks.Clear(tickUpper)
		}
	}

	return position, amount0, amount1, nil
}

// Mint implements spec §4.8's mint.
func (p *PoolEngine) Mint(recipient string, tickLower, tickUpper int32, amount uint128.Uint128) (cosmath.Int, cosmath.Int, error) {
	if amount.IsZero() {
		return cosmath.Int{}, cosmath.Int{}, newErr(ErrZeroLiquidity, "mint amount must be greater than zero", nil)
	}
	deltaL := u128ToBig(amount)
	_, amount0, amount1, err := p.modifyPosition(recipient, tickLower, tickUpper, deltaL, true)
	if err != nil {
		return cosmath.Int{}, cosmath.Int{}, err
	}
	p.State.Balance0.Add(p.State.Balance0, amount0)
	p.State.Balance1.Add(p.State.Balance1, amount1)

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("mint: recipient=%s range=[%d,%d] amount=%s -> amount0=%s amount1=%s", recipient, tickLower, tickUpper, amount.String(), amount0, amount1)
	}
	return cosmath.NewIntFromBigInt(amount0), cosmath.NewIntFromBigInt(amount1), nil
}

// Burn implements spec §4.8's burn. commit=false is the dry-run valuation
// path (§9's save_position_snapshot contract): it must never mutate ticks,
// positions, or pool state.
func (p *PoolEngine) Burn(owner string, tickLower, tickUpper int32, amount uint128.Uint128, commit bool) (cosmath.Int, cosmath.Int, error) {
	deltaL := new(big.Int).Neg(u128ToBig(amount))
	position, rawAmount0, rawAmount1, err := p.modifyPosition(owner, tickLower, tickUpper, deltaL, commit)
	if err != nil {
		return cosmath.Int{}, cosmath.Int{}, err
	}

	amount0 := new(big.Int).Neg(rawAmount0)
	amount1 := new(big.Int).Neg(rawAmount1)

	if commit {
		if amount0.Sign() > 0 || amount1.Sign() > 0 {
			key := PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
			if err := p.Positions.AddTokensOwed(key, amount0, amount1); err != nil {
				return cosmath.Int{}, cosmath.Int{}, err
			}
		}
		p.State.Balance0.Sub(p.State.Balance0, amount0)
		p.State.Balance1.Sub(p.State.Balance1, amount1)

		if logrus.GetLevel() >= logrus.DebugLevel {
			logrus.Debugf("burn: owner=%s range=[%d,%d] amount=%s -> amount0=%s amount1=%s", owner, tickLower, tickUpper, amount.String(), amount0, amount1)
		}
	}
	_ = position
	return cosmath.NewIntFromBigInt(amount0), cosmath.NewIntFromBigInt(amount1), nil
}

// Collect pays out owed tokens from a position, clamped to the amounts
// requested (spec §9: "python_eth_amm's main.py pool has a collect
// entrypoint").
func (p *PoolEngine) Collect(owner string, tickLower, tickUpper int32, amount0Requested, amount1Requested uint128.Uint128) (uint128.Uint128, uint128.Uint128, error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return uint128.Zero, uint128.Zero, err
	}
	key := PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	amount0, amount1, err := p.Positions.Collect(key, amount0Requested, amount1Requested)
	if err != nil {
		return uint128.Zero, uint128.Zero, err
	}
	if !amount0.IsZero() {
		p.State.Balance0.Sub(p.State.Balance0, u128ToBig(amount0))
	}
	if !amount1.IsZero() {
		p.State.Balance1.Sub(p.State.Balance1, u128ToBig(amount1))
	}
	return amount0, amount1, nil
}

// SetFeeProtocol updates the protocol-fee split (spec §3 Slot0.fee_protocol:
// each nibble either 0 or in [4,10]).
func (p *PoolEngine) SetFeeProtocol(feeProtocol0, feeProtocol1 uint8) error {
	valid := func(v uint8) bool { return v == 0 || (v >= 4 && v <= 10) }
	if !valid(feeProtocol0) || !valid(feeProtocol1) {
		return newErr(ErrInvalidFeeProtocol, "fee_protocol nibble must be 0 or in [4,10]", [2]uint8{feeProtocol0, feeProtocol1})
	}
	p.Slot0.FeeProtocol = feeProtocol0 | (feeProtocol1 << 4)
	return nil
}

// CollectProtocol pays accrued protocol fees out, clamped to what has
// accrued (spec §9, present in the original protocol's pool but dropped from
// the distillation's operation list).
func (p *PoolEngine) CollectProtocol(amount0Requested, amount1Requested uint128.Uint128) (uint128.Uint128, uint128.Uint128) {
	amount0 := amount0Requested
	if amount0.Cmp(p.State.ProtocolFee0) > 0 {
		amount0 = p.State.ProtocolFee0
	}
	amount1 := amount1Requested
	if amount1.Cmp(p.State.ProtocolFee1) > 0 {
		amount1 = p.State.ProtocolFee1
	}
	p.State.ProtocolFee0 = p.State.ProtocolFee0.Sub(amount0)
	p.State.ProtocolFee1 = p.State.ProtocolFee1.Sub(amount1)
	if !amount0.IsZero() {
		p.State.Balance0.Sub(p.State.Balance0, u128ToBig(amount0))
	}
	if !amount1.IsZero() {
		p.State.Balance1.Sub(p.State.Balance1, u128ToBig(amount1))
	}
	return amount0, amount1
}

// swapState is the loop-local working copy from spec §4.8 step 2. Slot0 and
// PoolState fields are committed from it after the loop exits; ticks crossed
// by the loop are updated in the TickTable as they are crossed.
type swapState struct {
	amountSpecifiedRemaining *big.Int
	amountCalculated         *big.Int
	sqrtPrice                *uint256.Int
	tick                     int32
	feeGrowthGlobal          *uint256.Int
	protocolFee              uint128.Uint128
	liquidity                uint128.Uint128
}

// Swap implements spec §4.8's swap.
func (p *PoolEngine) Swap(zeroForOne bool, amountSpecified cosmath.Int, sqrtPriceLimit *uint256.Int) (cosmath.Int, cosmath.Int, error) {
	amountSpecifiedBig := amountSpecified.BigInt()
	if amountSpecifiedBig.Sign() == 0 {
		return cosmath.Int{}, cosmath.Int{}, newErr(ErrZeroSwapAmount, "amount_specified must be nonzero", nil)
	}

	slot0 := p.Slot0
	if zeroForOne {
		if sqrtPriceLimit.Cmp(minSqrtRatio) <= 0 {
			return cosmath.Int{}, cosmath.Int{}, newErr(ErrPriceLimitOutOfBounds, "price limit below MinSqrtRatio", sqrtPriceLimit.Dec())
		}
		if sqrtPriceLimit.Cmp(slot0.SqrtPrice) >= 0 {
			return cosmath.Int{}, cosmath.Int{}, newErr(ErrInvalidPriceLimit, "price limit must be below current price for zero_for_one", sqrtPriceLimit.Dec())
		}
	} else {
		if sqrtPriceLimit.Cmp(maxSqrtRatio) >= 0 {
			return cosmath.Int{}, cosmath.Int{}, newErr(ErrPriceLimitOutOfBounds, "price limit above MaxSqrtRatio", sqrtPriceLimit.Dec())
		}
		if sqrtPriceLimit.Cmp(slot0.SqrtPrice) <= 0 {
			return cosmath.Int{}, cosmath.Int{}, newErr(ErrInvalidPriceLimit, "price limit must be above current price for one_for_zero", sqrtPriceLimit.Dec())
		}
	}

	exactInput := amountSpecifiedBig.Sign() >= 0

	state := swapState{
		amountSpecifiedRemaining: new(big.Int).Set(amountSpecifiedBig),
		amountCalculated:         new(big.Int),
		sqrtPrice:                u256Clone(slot0.SqrtPrice),
		tick:                     slot0.Tick,
		liquidity:                p.State.Liquidity,
		protocolFee:              uint128.Zero,
	}
	if zeroForOne {
		state.feeGrowthGlobal = u256Clone(p.State.FeeGrowthGlobal0)
	} else {
		state.feeGrowthGlobal = u256Clone(p.State.FeeGrowthGlobal1)
	}

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap: zeroForOne=%t exactInput=%t amountSpecified=%s currentPrice=%s limitPrice=%s",
			zeroForOne, exactInput, amountSpecifiedBig, slot0.SqrtPrice, sqrtPriceLimit)
	}

	var cachedTickCumulative int64
	var cachedSplCumulative *uint256.Int
	haveObservation := false

	for state.amountSpecifiedRemaining.Sign() != 0 && !state.sqrtPrice.Eq(sqrtPriceLimit) {
		sqrtPriceStart := u256Clone(state.sqrtPrice)

		tickNext := p.Ticks.NextInitializedTick(state.tick, zeroForOne)
		if tickNext < MinTick {
			tickNext = MinTick
		} else if tickNext > MaxTick {
			tickNext = MaxTick
		}

		sqrtPriceNextForTick, err := GetSqrtRatioAtTick(tickNext)
		if err != nil {
			return cosmath.Int{}, cosmath.Int{}, err
		}

		sqrtPriceTarget := sqrtPriceNextForTick
		if zeroForOne {
			if sqrtPriceNextForTick.Cmp(sqrtPriceLimit) < 0 {
				sqrtPriceTarget = sqrtPriceLimit
			}
		} else {
			if sqrtPriceNextForTick.Cmp(sqrtPriceLimit) > 0 {
				sqrtPriceTarget = sqrtPriceLimit
			}
		}

		liquidityU256 := u256FromBig(u128ToBig(state.liquidity))
		step, err := ComputeSwapStep(state.sqrtPrice, sqrtPriceTarget, liquidityU256, state.amountSpecifiedRemaining, p.Immutables.Fee)
		if err != nil {
			return cosmath.Int{}, cosmath.Int{}, err
		}
		state.sqrtPrice = step.SqrtPriceNext

		if exactInput {
			state.amountSpecifiedRemaining.Sub(state.amountSpecifiedRemaining, new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig()))
			state.amountCalculated.Sub(state.amountCalculated, step.AmountOut.ToBig())
		} else {
			state.amountSpecifiedRemaining.Add(state.amountSpecifiedRemaining, step.AmountOut.ToBig())
			state.amountCalculated.Add(state.amountCalculated, new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig()))
		}

		feeAmount := step.FeeAmount
		var protoShare uint8
		if zeroForOne {
			protoShare = slot0.feeProtocol0()
		} else {
			protoShare = slot0.feeProtocol1()
		}
		if protoShare > 0 {
			delta := new(uint256.Int).Div(feeAmount, uint256.NewInt(uint64(protoShare)))
			feeAmount = new(uint256.Int).Sub(feeAmount, delta)
			protocolFeeDelta, err := u128FromBig(delta.ToBig())
			if err != nil {
				return cosmath.Int{}, cosmath.Int{}, err
			}
			state.protocolFee, err = addDeltaU128(state.protocolFee, u128ToBig(protocolFeeDelta))
			if err != nil {
				return cosmath.Int{}, cosmath.Int{}, err
			}
		}

		if !state.liquidity.IsZero() {
			feeGrowthDelta, err := MulDiv(feeAmount, q128, liquidityU256)
			if err != nil {
				return cosmath.Int{}, cosmath.Int{}, err
			}
			state.feeGrowthGlobal = new(uint256.Int).Add(state.feeGrowthGlobal, feeGrowthDelta)
		}

		if state.sqrtPrice.Eq(sqrtPriceNextForTick) {
			if !haveObservation {
				cachedTickCumulative, cachedSplCumulative, err = p.observeCurrent()
				if err != nil {
					return cosmath.Int{}, cosmath.Int{}, err
				}
				haveObservation = true
			}
			if _, initialized := p.Ticks.Get(tickNext); initialized {
				var gg0, gg1 *uint256.Int
				if zeroForOne {
					gg0, gg1 = state.feeGrowthGlobal, p.State.FeeGrowthGlobal1
				} else {
					gg0, gg1 = p.State.FeeGrowthGlobal0, state.feeGrowthGlobal
				}
				liquidityNet := p.Ticks.CrossTick(tickNext, gg0, gg1, cachedSplCumulative, cachedTickCumulative, p.BlockTimestamp)
				if zeroForOne {
					liquidityNet = new(big.Int).Neg(liquidityNet)
				}
				newLiquidity, err := addDeltaU128(state.liquidity, liquidityNet)
				if err != nil {
					return cosmath.Int{}, cosmath.Int{}, err
				}
				state.liquidity = newLiquidity
			}
			if zeroForOne {
				state.tick = tickNext - 1
			} else {
				state.tick = tickNext
			}
		} else if !state.sqrtPrice.Eq(sqrtPriceStart) {
			state.tick, err = GetTickAtSqrtRatio(state.sqrtPrice)
			if err != nil {
				return cosmath.Int{}, cosmath.Int{}, err
			}
		}

		if logrus.GetLevel() >= logrus.TraceLevel {
			logrus.Tracef("swap step: tick=%d price=%s amountIn=%s amountOut=%s feeAmount=%s liquidity=%s",
				state.tick, state.sqrtPrice, step.AmountIn, step.AmountOut, step.FeeAmount, state.liquidity.String())
		}
	}

	if state.tick != slot0.Tick {
		p.writeOracleObservation()
		p.Slot0.Tick = state.tick
	}
	p.Slot0.SqrtPrice = state.sqrtPrice

	if state.liquidity != p.State.Liquidity {
		p.State.Liquidity = state.liquidity
	}
	if zeroForOne {
		p.State.FeeGrowthGlobal0 = state.feeGrowthGlobal
		if !state.protocolFee.IsZero() {
			p.State.ProtocolFee0, _ = addDeltaU128(p.State.ProtocolFee0, u128ToBig(state.protocolFee))
		}
	} else {
		p.State.FeeGrowthGlobal1 = state.feeGrowthGlobal
		if !state.protocolFee.IsZero() {
			p.State.ProtocolFee1, _ = addDeltaU128(p.State.ProtocolFee1, u128ToBig(state.protocolFee))
		}
	}

	var amount0, amount1 *big.Int
	consumed := new(big.Int).Sub(amountSpecifiedBig, state.amountSpecifiedRemaining)
	if zeroForOne == exactInput {
		amount0 = consumed
		amount1 = state.amountCalculated
	} else {
		amount0 = state.amountCalculated
		amount1 = consumed
	}
	p.State.Balance0.Add(p.State.Balance0, amount0)
	p.State.Balance1.Add(p.State.Balance1, amount1)

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap complete: amount0=%s amount1=%s newPrice=%s newTick=%d", amount0, amount1, state.sqrtPrice, state.tick)
	}

	return cosmath.NewIntFromBigInt(amount0), cosmath.NewIntFromBigInt(amount1), nil
}
