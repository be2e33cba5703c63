package clmmcore

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// Observation is one slot of the OracleRing (spec §3/§4.7).
type Observation struct {
	BlockTimestamp               uint32
	TickCumulative               int64 // wrapped to i56
	SecondsPerLiquidityCumulative *uint256.Int // wrapped to u160
	Initialized                  bool
}

func (o Observation) clone() Observation {
	return Observation{
		BlockTimestamp:                o.BlockTimestamp,
		TickCumulative:                o.TickCumulative,
		SecondsPerLiquidityCumulative: u256Clone(o.SecondsPerLiquidityCumulative),
		Initialized:                   o.Initialized,
	}
}

// OracleRing is the fixed-capacity circular buffer of Observations (spec
// §4.7). It is modeled as a plain array, never a linked structure, per
// spec §9.
type OracleRing struct {
	obs []Observation
}

// NewOracleRing allocates a ring of the given capacity and writes the
// initial observation at index 0, mirroring pool construction at the
// reference protocol's `initialize`.
func NewOracleRing(cardinalityNext uint16, timestamp uint32) *OracleRing {
	obs := make([]Observation, cardinalityNext)
	for i := range obs {
		obs[i] = Observation{SecondsPerLiquidityCumulative: u256Zero()}
	}
	obs[0] = Observation{
		BlockTimestamp:                timestamp,
		TickCumulative:                0,
		SecondsPerLiquidityCumulative: u256Zero(),
		Initialized:                   true,
	}
	return &OracleRing{obs: obs}
}

func (r *OracleRing) At(i uint16) Observation { return r.obs[i] }

func (r *OracleRing) Len() int { return len(r.obs) }

// Grow extends the backing array up to cardinalityNext, leaving new slots
// uninitialized (written lazily on wraparound, matching the reference
// protocol's lazy-grow semantics).
func (r *OracleRing) Grow(cardinalityNext uint16) {
	for uint16(len(r.obs)) < cardinalityNext {
		r.obs = append(r.obs, Observation{SecondsPerLiquidityCumulative: u256Zero()})
	}
}

// Transform advances cumulatives from prev by Δt = now - prev.BlockTimestamp
// (u32 wrapping), per spec §4.7.
func Transform(prev Observation, nowTs uint32, tick int32, liquidity uint128.Uint128) Observation {
	delta := int64(nowTs - prev.BlockTimestamp) // u32 wraparound subtraction

	l := liquidity
	if l.IsZero() {
		l = uint128.From64(1)
	}

	tickCumulative := wrap56(prev.TickCumulative + int64(tick)*delta)

	numerator := new(uint256.Int).Lsh(uint256.NewInt(uint64(delta)), 128)
	quotient, _ := MulDiv(numerator, uint256.NewInt(1), u256FromBig(u128ToBig(l)))
	splCumulative := wrapU160(new(uint256.Int).Add(prev.SecondsPerLiquidityCumulative, quotient))

	return Observation{
		BlockTimestamp:                nowTs,
		TickCumulative:                tickCumulative,
		SecondsPerLiquidityCumulative: splCumulative,
		Initialized:                   true,
	}
}

// Write implements spec §4.7's write: a no-op if the latest slot already
// has this timestamp, otherwise appends (growing cardinality toward
// cardinalityNext when the write wraps past the end).
func (r *OracleRing) Write(index uint16, nowTs uint32, tickBefore int32, liquidityBefore uint128.Uint128, cardinality, cardinalityNext uint16) (uint16, uint16) {
	last := r.obs[index]
	if last.BlockTimestamp == nowTs {
		return index, cardinality
	}

	newCardinality := cardinality
	if cardinalityNext > cardinality && index == cardinality-1 {
		newCardinality = cardinalityNext
	}

	newIndex := (index + 1) % newCardinality
	r.obs[newIndex] = Transform(last, nowTs, tickBefore, liquidityBefore)
	return newIndex, newCardinality
}

// ObserveSingle implements spec §4.7's observe_single.
func (r *OracleRing) ObserveSingle(nowTs uint32, secsAgo uint32, tick int32, index uint16, liquidity uint128.Uint128, cardinality uint16) (int64, *uint256.Int, error) {
	if secsAgo == 0 {
		last := r.obs[index]
		if last.BlockTimestamp != nowTs {
			last = Transform(last, nowTs, tick, liquidity)
		}
		return last.TickCumulative, last.SecondsPerLiquidityCumulative, nil
	}

	target := nowTs - secsAgo

	// A target at or after the newest observation is answered from that
	// observation, transformed forward to target when needed.
	newest := r.obs[index]
	if lte(nowTs, newest.BlockTimestamp, target) {
		if newest.BlockTimestamp != target {
			newest = Transform(newest, target, tick, liquidity)
		}
		return newest.TickCumulative, newest.SecondsPerLiquidityCumulative, nil
	}

	before, after, err := r.binarySearch(nowTs, target, index, cardinality)
	if err != nil {
		return 0, nil, err
	}

	if target == before.BlockTimestamp {
		return before.TickCumulative, before.SecondsPerLiquidityCumulative, nil
	}
	if target == after.BlockTimestamp {
		return after.TickCumulative, after.SecondsPerLiquidityCumulative, nil
	}

	observationTimeDelta := int64(after.BlockTimestamp - before.BlockTimestamp)
	targetDelta := int64(target - before.BlockTimestamp)

	tickCum := before.TickCumulative + ((after.TickCumulative-before.TickCumulative)/observationTimeDelta)*targetDelta

	splDiff := new(uint256.Int).Sub(after.SecondsPerLiquidityCumulative, before.SecondsPerLiquidityCumulative)
	splDelta, _ := MulDiv(splDiff, uint256.NewInt(uint64(targetDelta)), uint256.NewInt(uint64(observationTimeDelta)))
	splCum := wrapU160(new(uint256.Int).Add(before.SecondsPerLiquidityCumulative, splDelta))

	return tickCum, splCum, nil
}

// binarySearch locates the two observations bracketing target via a
// modular search over [index+1, index+1+cardinality) mod cardinality,
// skipping uninitialized slots (spec §4.7).
func (r *OracleRing) binarySearch(nowTs, target uint32, index, cardinality uint16) (Observation, Observation, error) {
	l := (index + 1) % cardinality
	h := l + cardinality - 1

	var beforeOrAt, atOrAfter Observation
	for {
		mid := (l + h) / 2
		beforeOrAt = r.obs[mid%cardinality]
		if !beforeOrAt.Initialized {
			l = mid + 1
			continue
		}
		atOrAfter = r.obs[(mid+1)%cardinality]

		targetAtOrAfter := lte(nowTs, beforeOrAt.BlockTimestamp, target)
		if targetAtOrAfter && lte(nowTs, target, atOrAfter.BlockTimestamp) {
			break
		}
		if !targetAtOrAfter {
			if mid == l {
				return Observation{}, Observation{}, newErr(ErrStaleOracle, "target precedes earliest initialized observation", target)
			}
			h = mid - 1
		} else {
			l = mid + 1
		}
		if l > h {
			return Observation{}, Observation{}, newErr(ErrStaleOracle, "target precedes earliest initialized observation", target)
		}
	}
	return beforeOrAt, atOrAfter, nil
}

// lte compares two u32 timestamps honoring wraparound the same way the
// reference protocol's `lte` helper does: unless both lie at or below now,
// each of a and b that is at or below now (written after the counter wrapped)
// is shifted forward by 2^32, so it still sorts after a timestamp from before
// the wrap.
func lte(now, a, b uint32) bool {
	if a <= now && b <= now {
		return a <= b
	}
	aAdjusted := uint64(a)
	if a <= now {
		aAdjusted += 1 << 32
	}
	bAdjusted := uint64(b)
	if b <= now {
		bAdjusted += 1 << 32
	}
	return aAdjusted <= bAdjusted
}
