package clmmcore

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TokenInfoSnapshot is the wire form of TokenInfo (spec §6 immutables.token_0/1).
type TokenInfoSnapshot struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// ImmutablesSnapshot is the wire form of PoolImmutables (spec §6).
type ImmutablesSnapshot struct {
	PoolAddress         string            `json:"pool_address"`
	Fee                 uint32            `json:"fee"`
	TickSpacing         int32             `json:"tick_spacing"`
	MaxLiquidityPerTick string            `json:"max_liquidity_per_tick"`
	Token0              TokenInfoSnapshot `json:"token_0"`
	Token1              TokenInfoSnapshot `json:"token_1"`
}

// StateSnapshot is the wire form of PoolState (spec §6).
type StateSnapshot struct {
	Liquidity         string `json:"liquidity"`
	FeeGrowthGlobal0  string `json:"fee_growth_global_0"`
	FeeGrowthGlobal1  string `json:"fee_growth_global_1"`
	Balance0          string `json:"balance_0"`
	Balance1          string `json:"balance_1"`
}

// Slot0Snapshot is the wire form of Slot0 (spec §6).
type Slot0Snapshot struct {
	SqrtPrice                  string `json:"sqrt_price"`
	Tick                       int32  `json:"tick"`
	ObservationIndex           uint16 `json:"observation_index"`
	ObservationCardinality     uint16 `json:"observation_cardinality"`
	ObservationCardinalityNext uint16 `json:"observation_cardinality_next"`
	FeeProtocol                uint8  `json:"fee_protocol"`
}

// TickSnapshot is the wire form of Tick (spec §6).
type TickSnapshot struct {
	LiquidityGross             string `json:"liquidity_gross"`
	LiquidityNet               string `json:"liquidity_net"`
	FeeGrowthOutside0          string `json:"fee_growth_outside_0"`
	FeeGrowthOutside1          string `json:"fee_growth_outside_1"`
	TickCumulativeOutside      int64  `json:"tick_cumulative_outside"`
	SecondsPerLiquidityOutside string `json:"seconds_per_liquidity_outside"`
	SecondsOutside             uint32 `json:"seconds_outside"`
}

// PositionSnapshot is the wire form of Position (spec §6).
type PositionSnapshot struct {
	Owner                string `json:"owner"`
	TickLower            int32  `json:"tick_lower"`
	TickUpper            int32  `json:"tick_upper"`
	Liquidity            string `json:"liquidity"`
	FeeGrowthInside0Last string `json:"fee_growth_inside_0_last"`
	FeeGrowthInside1Last string `json:"fee_growth_inside_1_last"`
	TokensOwed0          string `json:"tokens_owed_0"`
	TokensOwed1          string `json:"tokens_owed_1"`
}

// ObservationSnapshot is the wire form of Observation (spec §6).
type ObservationSnapshot struct {
	BlockTimestamp                uint32 `json:"block_timestamp"`
	TickCumulative                int64  `json:"tick_cumulative"`
	SecondsPerLiquidityCumulative string `json:"seconds_per_liquidity_cumulative"`
	Initialized                   bool   `json:"initialized"`
}

// PoolSnapshot is the canonical serialization for replay and testing (spec
// §6). Every u256/u128/i256 field round-trips as a decimal string so large
// integers survive JSON exactly.
type PoolSnapshot struct {
	BlockTimestamp uint32                          `json:"block_timestamp"`
	BlockNumber    uint64                          `json:"block_number"`
	ProtocolFee0   string                          `json:"protocol_fee_0"`
	ProtocolFee1   string                          `json:"protocol_fee_1"`
	Immutables     ImmutablesSnapshot              `json:"immutables"`
	State          StateSnapshot                   `json:"state"`
	Slot0          Slot0Snapshot                   `json:"slot0"`
	Ticks          map[string]TickSnapshot         `json:"ticks"`
	Positions      map[string]PositionSnapshot     `json:"positions"`
	Observations   []ObservationSnapshot           `json:"observations"`
}

func positionMapKey(owner string, tickLower, tickUpper int32) string {
	return fmt.Sprintf("%s_%d_%d", owner, tickLower, tickUpper)
}

func parsePositionMapKey(key string) (string, int32, int32, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("malformed position key %q", key)
	}
	lower, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed position key %q: %w", key, err)
	}
	upper, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed position key %q: %w", key, err)
	}
	return parts[0], int32(lower), int32(upper), nil
}

func bigDec(i *big.Int) string { return i.String() }

func mustParseBig(s string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal integer %q", s)
	}
	return i, nil
}

// Save serializes the complete pool state for replay (spec §6/§8
// round-trip property: load(save(pool)) ≡ pool).
func (p *PoolEngine) Save() PoolSnapshot {
	ticks := make(map[string]TickSnapshot, p.Ticks.Len())
	for _, k := range p.Ticks.keys {
		t, _ := p.Ticks.Get(k)
		ticks[strconv.FormatInt(int64(k), 10)] = TickSnapshot{
			LiquidityGross:             u128ToBig(t.LiquidityGross).String(),
			LiquidityNet:               t.LiquidityNet.String(),
			FeeGrowthOutside0:          t.FeeGrowthOutside0.Dec(),
			FeeGrowthOutside1:          t.FeeGrowthOutside1.Dec(),
			TickCumulativeOutside:      t.TickCumulativeOutside,
			SecondsPerLiquidityOutside: t.SecondsPerLiquidityOutside.Dec(),
			SecondsOutside:             t.SecondsOutside,
		}
	}

	positions := make(map[string]PositionSnapshot, len(p.Positions.positions))
	for key, pos := range p.Positions.positions {
		positions[positionMapKey(key.Owner, key.TickLower, key.TickUpper)] = PositionSnapshot{
			Owner:                key.Owner,
			TickLower:            key.TickLower,
			TickUpper:            key.TickUpper,
			Liquidity:            u128ToBig(pos.Liquidity).String(),
			FeeGrowthInside0Last: pos.FeeGrowthInside0Last.Dec(),
			FeeGrowthInside1Last: pos.FeeGrowthInside1Last.Dec(),
			TokensOwed0:          u128ToBig(pos.TokensOwed0).String(),
			TokensOwed1:          u128ToBig(pos.TokensOwed1).String(),
		}
	}

	observations := make([]ObservationSnapshot, p.Oracle.Len())
	for i := 0; i < p.Oracle.Len(); i++ {
		o := p.Oracle.At(uint16(i))
		observations[i] = ObservationSnapshot{
			BlockTimestamp:                o.BlockTimestamp,
			TickCumulative:                o.TickCumulative,
			SecondsPerLiquidityCumulative: o.SecondsPerLiquidityCumulative.Dec(),
			Initialized:                   o.Initialized,
		}
	}

	return PoolSnapshot{
		BlockTimestamp: p.BlockTimestamp,
		BlockNumber:    p.BlockNumber,
		ProtocolFee0:   u128ToBig(p.State.ProtocolFee0).String(),
		ProtocolFee1:   u128ToBig(p.State.ProtocolFee1).String(),
		Immutables: ImmutablesSnapshot{
			PoolAddress:         p.Immutables.PoolAddress.Hex(),
			Fee:                 uint32(p.Immutables.Fee),
			TickSpacing:         p.Immutables.TickSpacing,
			MaxLiquidityPerTick: u128ToBig(p.Immutables.MaxLiquidityPerTick).String(),
			Token0: TokenInfoSnapshot{
				Address:  p.Immutables.Token0.Address.Hex(),
				Name:     p.Immutables.Token0.Name,
				Symbol:   p.Immutables.Token0.Symbol,
				Decimals: p.Immutables.Token0.Decimals,
			},
			Token1: TokenInfoSnapshot{
				Address:  p.Immutables.Token1.Address.Hex(),
				Name:     p.Immutables.Token1.Name,
				Symbol:   p.Immutables.Token1.Symbol,
				Decimals: p.Immutables.Token1.Decimals,
			},
		},
		State: StateSnapshot{
			Liquidity:        u128ToBig(p.State.Liquidity).String(),
			FeeGrowthGlobal0: p.State.FeeGrowthGlobal0.Dec(),
			FeeGrowthGlobal1: p.State.FeeGrowthGlobal1.Dec(),
			Balance0:         bigDec(p.State.Balance0),
			Balance1:         bigDec(p.State.Balance1),
		},
		Slot0: Slot0Snapshot{
			SqrtPrice:                  p.Slot0.SqrtPrice.Dec(),
			Tick:                       p.Slot0.Tick,
			ObservationIndex:           p.Slot0.ObservationIndex,
			ObservationCardinality:     p.Slot0.ObservationCardinality,
			ObservationCardinalityNext: p.Slot0.ObservationCardinalityNext,
			FeeProtocol:                p.Slot0.FeeProtocol,
		},
		Ticks:        ticks,
		Positions:    positions,
		Observations: observations,
	}
}

// LoadPool rebuilds a PoolEngine from a snapshot — the second of spec §6's
// two pool constructors.
func LoadPool(s PoolSnapshot) (*PoolEngine, error) {
	maxLiq, err := mustParseBig(s.Immutables.MaxLiquidityPerTick)
	if err != nil {
		return nil, err
	}
	maxLiqU128, err := u128FromBig(maxLiq)
	if err != nil {
		return nil, err
	}

	immutables := PoolImmutables{
		PoolAddress:         common.HexToAddress(s.Immutables.PoolAddress),
		Fee:                 FeeTier(s.Immutables.Fee),
		TickSpacing:         s.Immutables.TickSpacing,
		MaxLiquidityPerTick: maxLiqU128,
		Token0: TokenInfo{
			Address:  common.HexToAddress(s.Immutables.Token0.Address),
			Name:     s.Immutables.Token0.Name,
			Symbol:   s.Immutables.Token0.Symbol,
			Decimals: s.Immutables.Token0.Decimals,
		},
		Token1: TokenInfo{
			Address:  common.HexToAddress(s.Immutables.Token1.Address),
			Name:     s.Immutables.Token1.Name,
			Symbol:   s.Immutables.Token1.Symbol,
			Decimals: s.Immutables.Token1.Decimals,
		},
	}

	sqrtPrice, err := uint256.FromDecimal(s.Slot0.SqrtPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid slot0.sqrt_price: %w", err)
	}

	liquidityBig, err := mustParseBig(s.State.Liquidity)
	if err != nil {
		return nil, err
	}
	liquidity, err := u128FromBig(liquidityBig)
	if err != nil {
		return nil, err
	}
	feeGrowthGlobal0, err := uint256.FromDecimal(s.State.FeeGrowthGlobal0)
	if err != nil {
		return nil, fmt.Errorf("invalid state.fee_growth_global_0: %w", err)
	}
	feeGrowthGlobal1, err := uint256.FromDecimal(s.State.FeeGrowthGlobal1)
	if err != nil {
		return nil, fmt.Errorf("invalid state.fee_growth_global_1: %w", err)
	}
	balance0, err := mustParseBig(s.State.Balance0)
	if err != nil {
		return nil, err
	}
	balance1, err := mustParseBig(s.State.Balance1)
	if err != nil {
		return nil, err
	}
	protocolFee0Big, err := mustParseBig(s.ProtocolFee0)
	if err != nil {
		return nil, err
	}
	protocolFee1Big, err := mustParseBig(s.ProtocolFee1)
	if err != nil {
		return nil, err
	}
	protocolFee0, err := u128FromBig(protocolFee0Big)
	if err != nil {
		return nil, err
	}
	protocolFee1, err := u128FromBig(protocolFee1Big)
	if err != nil {
		return nil, err
	}

	ticks := NewTickTable()
	for key, ts := range s.Ticks {
		tickIdx, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid tick key %q: %w", key, err)
		}
		grossBig, err := mustParseBig(ts.LiquidityGross)
		if err != nil {
			return nil, err
		}
		gross, err := u128FromBig(grossBig)
		if err != nil {
			return nil, err
		}
		net, err := mustParseBig(ts.LiquidityNet)
		if err != nil {
			return nil, err
		}
		fg0, err := uint256.FromDecimal(ts.FeeGrowthOutside0)
		if err != nil {
			return nil, fmt.Errorf("invalid tick %d fee_growth_outside_0: %w", tickIdx, err)
		}
		fg1, err := uint256.FromDecimal(ts.FeeGrowthOutside1)
		if err != nil {
			return nil, fmt.Errorf("invalid tick %d fee_growth_outside_1: %w", tickIdx, err)
		}
		spl, err := uint256.FromDecimal(ts.SecondsPerLiquidityOutside)
		if err != nil {
			return nil, fmt.Errorf("invalid tick %d seconds_per_liquidity_outside: %w", tickIdx, err)
		}
		ticks.Set(int32(tickIdx), &Tick{
			LiquidityGross:             gross,
			LiquidityNet:               net,
			FeeGrowthOutside0:          fg0,
			FeeGrowthOutside1:          fg1,
			TickCumulativeOutside:      ts.TickCumulativeOutside,
			SecondsPerLiquidityOutside: spl,
			SecondsOutside:             ts.SecondsOutside,
		})
	}

	positions := NewPositionTable()
	for rawKey, ps := range s.Positions {
		owner, lower, upper, err := parsePositionMapKey(rawKey)
		if err != nil {
			return nil, err
		}
		liqBig, err := mustParseBig(ps.Liquidity)
		if err != nil {
			return nil, err
		}
		posLiq, err := u128FromBig(liqBig)
		if err != nil {
			return nil, err
		}
		fi0, err := uint256.FromDecimal(ps.FeeGrowthInside0Last)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q fee_growth_inside_0_last: %w", rawKey, err)
		}
		fi1, err := uint256.FromDecimal(ps.FeeGrowthInside1Last)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q fee_growth_inside_1_last: %w", rawKey, err)
		}
		owed0Big, err := mustParseBig(ps.TokensOwed0)
		if err != nil {
			return nil, err
		}
		owed0, err := u128FromBig(owed0Big)
		if err != nil {
			return nil, err
		}
		owed1Big, err := mustParseBig(ps.TokensOwed1)
		if err != nil {
			return nil, err
		}
		owed1, err := u128FromBig(owed1Big)
		if err != nil {
			return nil, err
		}
		positions.set(PositionKey{Owner: owner, TickLower: lower, TickUpper: upper}, &Position{
			Liquidity:            posLiq,
			FeeGrowthInside0Last: fi0,
			FeeGrowthInside1Last: fi1,
			TokensOwed0:          owed0,
			TokensOwed1:          owed1,
		})
	}

	oracle := &OracleRing{obs: make([]Observation, len(s.Observations))}
	for i, os := range s.Observations {
		spl, err := uint256.FromDecimal(os.SecondsPerLiquidityCumulative)
		if err != nil {
			return nil, fmt.Errorf("invalid observation %d seconds_per_liquidity_cumulative: %w", i, err)
		}
		oracle.obs[i] = Observation{
			BlockTimestamp:                os.BlockTimestamp,
			TickCumulative:                os.TickCumulative,
			SecondsPerLiquidityCumulative: spl,
			Initialized:                   os.Initialized,
		}
	}

	return &PoolEngine{
		Immutables: immutables,
		Slot0: Slot0{
			SqrtPrice:                  sqrtPrice,
			Tick:                       s.Slot0.Tick,
			ObservationIndex:           s.Slot0.ObservationIndex,
			ObservationCardinality:     s.Slot0.ObservationCardinality,
			ObservationCardinalityNext: s.Slot0.ObservationCardinalityNext,
			FeeProtocol:                s.Slot0.FeeProtocol,
		},
		State: PoolState{
			Liquidity:        liquidity,
			FeeGrowthGlobal0: feeGrowthGlobal0,
			FeeGrowthGlobal1: feeGrowthGlobal1,
			Balance0:         balance0,
			Balance1:         balance1,
			ProtocolFee0:     protocolFee0,
			ProtocolFee1:     protocolFee1,
		},
		Ticks:          ticks,
		Positions:      positions,
		Oracle:         oracle,
		BlockTimestamp: s.BlockTimestamp,
		BlockNumber:    s.BlockNumber,
	}, nil
}
