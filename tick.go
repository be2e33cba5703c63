package clmmcore

import (
	"math/big"
	"sort"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// Tick holds the per-tick accumulators from spec §3. It is created when a
// position first references it (liquidity_gross flips 0 -> >0) and removed
// when the last position releases it.
type Tick struct {
	LiquidityGross             uint128.Uint128
	LiquidityNet               *big.Int
	FeeGrowthOutside0          *uint256.Int
	FeeGrowthOutside1          *uint256.Int
	TickCumulativeOutside      int64 // wrapped to i56 on every write
	SecondsPerLiquidityOutside *uint256.Int // wrapped to u160
	SecondsOutside             uint32
}

func newTick() *Tick {
	return &Tick{
		LiquidityGross:             uint128.Zero,
		LiquidityNet:               new(big.Int),
		FeeGrowthOutside0:          u256Zero(),
		FeeGrowthOutside1:          u256Zero(),
		SecondsPerLiquidityOutside: u256Zero(),
	}
}

func (t *Tick) clone() *Tick {
	return &Tick{
		LiquidityGross:             t.LiquidityGross,
		LiquidityNet:               new(big.Int).Set(t.LiquidityNet),
		FeeGrowthOutside0:          u256Clone(t.FeeGrowthOutside0),
		FeeGrowthOutside1:          u256Clone(t.FeeGrowthOutside1),
		TickCumulativeOutside:      t.TickCumulativeOutside,
		SecondsPerLiquidityOutside: u256Clone(t.SecondsPerLiquidityOutside),
		SecondsOutside:             t.SecondsOutside,
	}
}

// TickTable is the sparse i24 -> Tick map from spec §4.5. A sorted slice of
// keys backs successor/predecessor lookups in O(log n); ticks themselves
// live in a map for O(1) get/set/clear, the same split the reference
// protocol's bitmap-plus-word scheme achieves with different mechanics.
type TickTable struct {
	ticks map[int32]*Tick
	keys  []int32 // kept sorted ascending
}

func NewTickTable() *TickTable {
	return &TickTable{ticks: make(map[int32]*Tick)}
}

func (tt *TickTable) Get(tick int32) (*Tick, bool) {
	t, ok := tt.ticks[tick]
	return t, ok
}

func (tt *TickTable) Set(tick int32, t *Tick) {
	if _, exists := tt.ticks[tick]; !exists {
		i := sort.Search(len(tt.keys), func(i int) bool { return tt.keys[i] >= tick })
		tt.keys = append(tt.keys, 0)
		copy(tt.keys[i+1:], tt.keys[i:])
		tt.keys[i] = tick
	}
	tt.ticks[tick] = t
}

func (tt *TickTable) Clear(tick int32) {
	if _, exists := tt.ticks[tick]; !exists {
		return
	}
	delete(tt.ticks, tick)
	i := sort.Search(len(tt.keys), func(i int) bool { return tt.keys[i] >= tick })
	if i < len(tt.keys) && tt.keys[i] == tick {
		tt.keys = append(tt.keys[:i], tt.keys[i+1:]...)
	}
}

// Len reports the number of initialized ticks, used by Snapshot.
func (tt *TickTable) Len() int { return len(tt.keys) }

// NextInitializedTick returns the greatest initialized tick <= current when
// zeroForOne, else the least initialized tick > current (spec §4.5). Returns
// MinTick / MaxTick respectively when the search runs off the end.
func (tt *TickTable) NextInitializedTick(current int32, zeroForOne bool) int32 {
	if zeroForOne {
		i := sort.Search(len(tt.keys), func(i int) bool { return tt.keys[i] > current })
		if i == 0 {
			return MinTick
		}
		return tt.keys[i-1]
	}
	i := sort.Search(len(tt.keys), func(i int) bool { return tt.keys[i] > current })
	if i == len(tt.keys) {
		return MaxTick
	}
	return tt.keys[i]
}

// UpdateTick implements spec §4.5's update_tick. ΔL is the signed liquidity
// delta contributed by one side (lower or upper) of a position edit.
func (tt *TickTable) UpdateTick(
	tick, tickCurrent int32,
	deltaL *big.Int,
	feeGrowthGlobal0, feeGrowthGlobal1 *uint256.Int,
	secondsPerLiquidityCumulative *uint256.Int,
	tickCumulative int64,
	time uint32,
	isUpper bool,
	maxLiquidityPerTick uint128.Uint128,
) (flipped bool, err error) {
	existing, had := tt.ticks[tick]
	var grossBefore *big.Int
	if had {
		grossBefore = u128ToBig(existing.LiquidityGross)
	} else {
		grossBefore = new(big.Int)
	}

	grossAfter := new(big.Int).Add(grossBefore, deltaL)
	if grossAfter.Sign() < 0 {
		return false, newErr(ErrLiquidityOverflow, "liquidity_gross underflow", deltaL.String())
	}
	if grossAfter.Cmp(u128ToBig(maxLiquidityPerTick)) > 0 {
		return false, newErr(ErrLiquidityOverflow, "liquidity_gross exceeds max_liquidity_per_tick", grossAfter.String())
	}

	grossAfterU128, err := u128FromBig(grossAfter)
	if err != nil {
		return false, err
	}

	flipped = grossBefore.Sign() == 0 != (grossAfter.Sign() == 0)

	t := existing
	if t == nil {
		t = newTick()
	}

	if grossBefore.Sign() == 0 && tick <= tickCurrent {
		t.FeeGrowthOutside0 = u256Clone(feeGrowthGlobal0)
		t.FeeGrowthOutside1 = u256Clone(feeGrowthGlobal1)
		t.SecondsPerLiquidityOutside = wrapU160(secondsPerLiquidityCumulative)
		t.TickCumulativeOutside = wrap56(tickCumulative)
		t.SecondsOutside = time
	}

	t.LiquidityGross = grossAfterU128
	netDelta := new(big.Int).Set(deltaL)
	if isUpper {
		netDelta.Neg(netDelta)
	}
	t.LiquidityNet.Add(t.LiquidityNet, netDelta)
	if err := checkI128Range(t.LiquidityNet); err != nil {
		return false, err
	}

	tt.Set(tick, t)
	return flipped, nil
}

// CrossTick implements spec §4.5's cross_tick: inverts each "outside"
// accumulator and returns the stored liquidity_net. Panics if tick is
// absent; callers only cross initialized ticks.
func (tt *TickTable) CrossTick(
	tick int32,
	feeGrowthGlobal0, feeGrowthGlobal1 *uint256.Int,
	secondsPerLiquidityCumulative *uint256.Int,
	tickCumulative int64,
	time uint32,
) *big.Int {
	t := tt.ticks[tick]
	t.FeeGrowthOutside0 = new(uint256.Int).Sub(feeGrowthGlobal0, t.FeeGrowthOutside0)
	t.FeeGrowthOutside1 = new(uint256.Int).Sub(feeGrowthGlobal1, t.FeeGrowthOutside1)
	t.SecondsPerLiquidityOutside = wrapU160(new(uint256.Int).Sub(secondsPerLiquidityCumulative, t.SecondsPerLiquidityOutside))
	t.TickCumulativeOutside = wrap56(tickCumulative - t.TickCumulativeOutside)
	t.SecondsOutside = time - t.SecondsOutside
	return new(big.Int).Set(t.LiquidityNet)
}

// MaxLiquidityPerTick derives the per-tick liquidity cap from tick spacing
// (spec §3's PoolImmutables.max_liquidity_per_tick).
func MaxLiquidityPerTick(tickSpacing int32) uint128.Uint128 {
	maxTickUsable := MaxTick - (MaxTick % tickSpacing)
	numTicks := big.NewInt(int64((2*maxTickUsable)/tickSpacing) + 1)
	perTick := new(big.Int).Div(maxU128Big, numTicks)
	u, err := u128FromBig(perTick)
	if err != nil {
		panic(err)
	}
	return u
}
