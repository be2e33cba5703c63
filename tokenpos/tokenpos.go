// Package tokenpos wraps the core engine's (owner, tickLower, tickUpper)
// positions with a tokenID, the same indirection Uniswap's real
// NonfungiblePositionManager adds on top of the core pool contract. It holds
// no amount arithmetic of its own — every mint/burn/collect flows straight
// through to a clmmcore.PoolEngine.
package tokenpos

import (
	"fmt"

	"github.com/clmmsim/engine"
	"lukechampine.com/uint128"
)

// Position is a tokenized handle onto one core position. Owner here is the
// NFT owner, which may be reassigned by Transfer independently of the
// underlying (owner, lower, upper) key the core engine still uses.
type Position struct {
	TokenID   uint64
	Owner     string
	Pool      string // pool address, keys into Manager's pool registry
	TickLower int32
	TickUpper int32
}

// Manager indexes Positions by tokenID, owner, and pool, and drives a set of
// registered clmmcore.PoolEngine instances on Mint/IncreaseLiquidity/
// DecreaseLiquidity/Collect/Transfer, mirroring the teacher's
// TokenPositionManager but delegating all accounting to the core engine
// instead of re-deriving fee growth locally.
type Manager struct {
	pools       map[string]*clmmcore.PoolEngine
	positions   map[uint64]*Position
	ownerTokens map[string][]uint64
	poolTokens  map[string][]uint64
}

// NewManager builds an empty manager over the given pool registry (address
// -> engine), the same role the teacher's NFTPositionSimulator.pools map played.
func NewManager(pools map[string]*clmmcore.PoolEngine) *Manager {
	return &Manager{
		pools:       pools,
		positions:   make(map[uint64]*Position),
		ownerTokens: make(map[string][]uint64),
		poolTokens:  make(map[string][]uint64),
	}
}

func (m *Manager) pool(address string) (*clmmcore.PoolEngine, error) {
	p, ok := m.pools[address]
	if !ok {
		return nil, fmt.Errorf("tokenpos: unknown pool %s", address)
	}
	return p, nil
}

// Mint creates a new tokenized position (or, if the tokenID already exists,
// adds to it) by minting amount of liquidity on the underlying pool.
func (m *Manager) Mint(tokenID uint64, owner, poolAddress string, tickLower, tickUpper int32, amount uint128.Uint128) error {
	pool, err := m.pool(poolAddress)
	if err != nil {
		return err
	}
	existing, exists := m.positions[tokenID]
	if exists {
		if err := checkSamePool(existing, poolAddress, tickLower, tickUpper); err != nil {
			return err
		}
	}
	if _, _, err := pool.Mint(positionKey(tokenID), tickLower, tickUpper, amount); err != nil {
		return fmt.Errorf("tokenpos: mint: %w", err)
	}
	if exists {
		return nil
	}

	pos := &Position{TokenID: tokenID, Owner: owner, Pool: poolAddress, TickLower: tickLower, TickUpper: tickUpper}
	m.positions[tokenID] = pos
	m.ownerTokens[owner] = append(m.ownerTokens[owner], tokenID)
	m.poolTokens[poolAddress] = append(m.poolTokens[poolAddress], tokenID)
	return nil
}

func checkSamePool(pos *Position, poolAddress string, tickLower, tickUpper int32) error {
	if pos.Pool != poolAddress || pos.TickLower != tickLower || pos.TickUpper != tickUpper {
		return fmt.Errorf("tokenpos: token %d range mismatch: have (%s,%d,%d), got (%s,%d,%d)",
			pos.TokenID, pos.Pool, pos.TickLower, pos.TickUpper, poolAddress, tickLower, tickUpper)
	}
	return nil
}

// IncreaseLiquidity adds liquidity to an existing tokenized position.
func (m *Manager) IncreaseLiquidity(tokenID uint64, amount uint128.Uint128) error {
	pos, exists := m.positions[tokenID]
	if !exists {
		return fmt.Errorf("tokenpos: token %d does not exist", tokenID)
	}
	pool, err := m.pool(pos.Pool)
	if err != nil {
		return err
	}
	if _, _, err := pool.Mint(positionKey(tokenID), pos.TickLower, pos.TickUpper, amount); err != nil {
		return fmt.Errorf("tokenpos: increase_liquidity: %w", err)
	}
	return nil
}

// DecreaseLiquidity removes amount of liquidity from a tokenized position,
// crediting the withdrawn amounts to the position's owed balances (spec
// §4.8 burn commit=true semantics, reached through the core engine).
func (m *Manager) DecreaseLiquidity(tokenID uint64, amount uint128.Uint128) (cosmInt0, cosmInt1 string, err error) {
	pos, exists := m.positions[tokenID]
	if !exists {
		return "", "", fmt.Errorf("tokenpos: token %d does not exist", tokenID)
	}
	pool, err := m.pool(pos.Pool)
	if err != nil {
		return "", "", err
	}
	amount0, amount1, err := pool.Burn(positionKey(tokenID), pos.TickLower, pos.TickUpper, amount, true)
	if err != nil {
		return "", "", fmt.Errorf("tokenpos: decrease_liquidity: %w", err)
	}
	return amount0.String(), amount1.String(), nil
}

// Collect withdraws up to (amount0Requested, amount1Requested) from a
// tokenized position's owed balances.
func (m *Manager) Collect(tokenID uint64, amount0Requested, amount1Requested uint128.Uint128) (uint128.Uint128, uint128.Uint128, error) {
	pos, exists := m.positions[tokenID]
	if !exists {
		return uint128.Zero, uint128.Zero, fmt.Errorf("tokenpos: token %d does not exist", tokenID)
	}
	pool, err := m.pool(pos.Pool)
	if err != nil {
		return uint128.Zero, uint128.Zero, err
	}
	amount0, amount1, err := pool.Collect(positionKey(tokenID), pos.TickLower, pos.TickUpper, amount0Requested, amount1Requested)
	if err != nil {
		return uint128.Zero, uint128.Zero, fmt.Errorf("tokenpos: collect: %w", err)
	}
	return amount0, amount1, nil
}

// Transfer reassigns a tokenized position's owner without touching the
// underlying core position, which stays keyed by the synthetic
// positionKey(tokenID) rather than the NFT owner.
func (m *Manager) Transfer(tokenID uint64, from, to string) error {
	pos, exists := m.positions[tokenID]
	if !exists {
		return fmt.Errorf("tokenpos: token %d does not exist", tokenID)
	}
	if pos.Owner != from {
		return fmt.Errorf("tokenpos: token %d owner mismatch: expected %s, got %s", tokenID, pos.Owner, from)
	}

	owned := m.ownerTokens[from]
	for i, id := range owned {
		if id == tokenID {
			owned[i] = owned[len(owned)-1]
			m.ownerTokens[from] = owned[:len(owned)-1]
			break
		}
	}
	pos.Owner = to
	m.ownerTokens[to] = append(m.ownerTokens[to], tokenID)
	return nil
}

// Get returns the tokenized position record for tokenID.
func (m *Manager) Get(tokenID uint64) (*Position, bool) {
	p, ok := m.positions[tokenID]
	return p, ok
}

// ByOwner returns every tokenized position currently held by owner.
func (m *Manager) ByOwner(owner string) []*Position {
	ids := m.ownerTokens[owner]
	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.positions[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ByPool returns every tokenized position against poolAddress.
func (m *Manager) ByPool(poolAddress string) []*Position {
	ids := m.poolTokens[poolAddress]
	out := make([]*Position, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.positions[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// positionKey is the core PositionTable owner string a tokenized position
// maps onto — keyed by tokenID so Transfer never has to touch core state.
func positionKey(tokenID uint64) string {
	return fmt.Sprintf("nft:%d", tokenID)
}
