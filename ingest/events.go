// Package ingest decodes NonfungiblePositionManager-shaped chain event logs
// and drives a tokenpos.Manager, the same job the teacher's
// nft_event_parsers.go / nft_position_simulator.go did against its decimal
// CorePool. Decoding stays here, outside the core engine, so the engine's
// Non-goal of "no I/O, no network" stays literally true of its own imports.
package ingest

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"

	"github.com/clmmsim/engine/tokenpos"
)

// Event signature hashes for NonfungiblePositionManager, unchanged from the
// values the teacher computed off the real contract ABI.
var (
	MintSig              = common.HexToHash("0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde")
	IncreaseLiquiditySig = common.HexToHash("0x3067048beee31b25b2f1681f88dac838c8bba36af25bfb2b7cf7473a5847e35f")
	DecreaseLiquiditySig = common.HexToHash("0x26f6a048ee9138f2c0ce266f322cb99228e8d619ae2bff30c67f8dcf9d2377b4")
	CollectSig           = common.HexToHash("0x40d0efd1a53d60ecbf40971b9daf7dc90178c3aadc7aab1765632738fa8b8f01")
	TransferSig          = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

	uint256Type, _ = abi.NewType("uint256", "", nil)
)

// MintEvent mirrors NonfungiblePositionManager's Mint(tokenId, owner,
// tickLower, tickUpper, pool, amount).
type MintEvent struct {
	RawEvent  *types.Log
	TokenID   uint64
	Owner     string
	Pool      string
	TickLower int32
	TickUpper int32
	Amount    uint128.Uint128
}

// IncreaseLiquidityEvent mirrors IncreaseLiquidity(tokenId, liquidity,
// amount0, amount1).
type IncreaseLiquidityEvent struct {
	RawEvent  *types.Log
	TokenID   uint64
	Liquidity uint128.Uint128
}

// DecreaseLiquidityEvent mirrors DecreaseLiquidity(tokenId, liquidity,
// amount0, amount1).
type DecreaseLiquidityEvent struct {
	RawEvent  *types.Log
	TokenID   uint64
	Liquidity uint128.Uint128
}

// CollectEvent mirrors Collect(tokenId, recipient, amount0, amount1).
type CollectEvent struct {
	RawEvent *types.Log
	TokenID  uint64
	Amount0  uint128.Uint128
	Amount1  uint128.Uint128
}

// TransferEvent mirrors ERC-721 Transfer(from, to, tokenId).
type TransferEvent struct {
	RawEvent *types.Log
	TokenID  uint64
	From     string
	To       string
}

func readTokenID(topic common.Hash) (uint64, error) {
	raw, err := abi.ReadInteger(uint256Type, topic.Bytes())
	if err != nil {
		return 0, err
	}
	id, ok := raw.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("ingest: failed to decode token id")
	}
	return id.Uint64(), nil
}

func u128FromWord(word []byte) uint128.Uint128 {
	return uint128.FromBig(new(big.Int).SetBytes(word))
}

// ParseMint decodes a Mint log.
func ParseMint(log *types.Log) (*MintEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("ingest: not enough topics for Mint event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	data := log.Data
	if len(data) < 160 {
		return nil, fmt.Errorf("ingest: short data for Mint event")
	}
	owner := common.BytesToAddress(data[:32])
	tickLower := int32(new(big.Int).SetBytes(data[32:64]).Int64())
	tickUpper := int32(new(big.Int).SetBytes(data[64:96]).Int64())
	pool := common.BytesToAddress(data[96:128])
	amount := u128FromWord(data[128:160])

	return &MintEvent{
		RawEvent:  log,
		TokenID:   tokenID,
		Owner:     strings.ToLower(owner.Hex()),
		Pool:      strings.ToLower(pool.Hex()),
		TickLower: tickLower,
		TickUpper: tickUpper,
		Amount:    amount,
	}, nil
}

// ParseIncreaseLiquidity decodes an IncreaseLiquidity log.
func ParseIncreaseLiquidity(log *types.Log) (*IncreaseLiquidityEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("ingest: not enough topics for IncreaseLiquidity event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	if len(log.Data) < 32 {
		return nil, fmt.Errorf("ingest: short data for IncreaseLiquidity event")
	}
	return &IncreaseLiquidityEvent{
		RawEvent:  log,
		TokenID:   tokenID,
		Liquidity: u128FromWord(log.Data[:32]),
	}, nil
}

// ParseDecreaseLiquidity decodes a DecreaseLiquidity log.
func ParseDecreaseLiquidity(log *types.Log) (*DecreaseLiquidityEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("ingest: not enough topics for DecreaseLiquidity event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	if len(log.Data) < 32 {
		return nil, fmt.Errorf("ingest: short data for DecreaseLiquidity event")
	}
	return &DecreaseLiquidityEvent{
		RawEvent:  log,
		TokenID:   tokenID,
		Liquidity: u128FromWord(log.Data[:32]),
	}, nil
}

// ParseCollect decodes a Collect log.
func ParseCollect(log *types.Log) (*CollectEvent, error) {
	if len(log.Topics) < 2 {
		return nil, fmt.Errorf("ingest: not enough topics for Collect event")
	}
	tokenID, err := readTokenID(log.Topics[1])
	if err != nil {
		return nil, err
	}
	data := log.Data
	if len(data) < 96 {
		return nil, fmt.Errorf("ingest: short data for Collect event")
	}
	return &CollectEvent{
		RawEvent: log,
		TokenID:  tokenID,
		Amount0:  u128FromWord(data[32:64]),
		Amount1:  u128FromWord(data[64:96]),
	}, nil
}

// ParseTransfer decodes an ERC-721 Transfer log.
func ParseTransfer(log *types.Log) (*TransferEvent, error) {
	if len(log.Topics) < 4 {
		return nil, fmt.Errorf("ingest: not enough topics for Transfer event")
	}
	from := common.BytesToAddress(log.Topics[1].Bytes())
	to := common.BytesToAddress(log.Topics[2].Bytes())
	tokenID, err := readTokenID(log.Topics[3])
	if err != nil {
		return nil, err
	}
	return &TransferEvent{
		RawEvent: log,
		TokenID:  tokenID,
		From:     strings.ToLower(from.Hex()),
		To:       strings.ToLower(to.Hex()),
	}, nil
}

// Processor dispatches decoded logs to a tokenpos.Manager, mirroring the
// teacher's NFTPositionSimulator.processEvent switch over log.Topics[0].
type Processor struct {
	Manager *tokenpos.Manager
}

// NewProcessor wraps manager for log-driven updates.
func NewProcessor(manager *tokenpos.Manager) *Processor {
	return &Processor{Manager: manager}
}

// Process dispatches a single log by its topic-0 signature. Unrecognized
// topics are ignored, matching the teacher's default case.
func (p *Processor) Process(log *types.Log) error {
	if len(log.Topics) == 0 {
		return nil
	}
	switch log.Topics[0] {
	case MintSig:
		ev, err := ParseMint(log)
		if err != nil {
			return err
		}
		return p.Manager.Mint(ev.TokenID, ev.Owner, ev.Pool, ev.TickLower, ev.TickUpper, ev.Amount)
	case IncreaseLiquiditySig:
		ev, err := ParseIncreaseLiquidity(log)
		if err != nil {
			return err
		}
		return p.Manager.IncreaseLiquidity(ev.TokenID, ev.Liquidity)
	case DecreaseLiquiditySig:
		ev, err := ParseDecreaseLiquidity(log)
		if err != nil {
			return err
		}
		_, _, err = p.Manager.DecreaseLiquidity(ev.TokenID, ev.Liquidity)
		return err
	case CollectSig:
		ev, err := ParseCollect(log)
		if err != nil {
			return err
		}
		_, _, err = p.Manager.Collect(ev.TokenID, ev.Amount0, ev.Amount1)
		return err
	case TransferSig:
		ev, err := ParseTransfer(log)
		if err != nil {
			return err
		}
		return p.Manager.Transfer(ev.TokenID, ev.From, ev.To)
	default:
		return nil
	}
}

// ProcessAll processes every log in order, logging and skipping any log that
// fails to decode or apply rather than aborting the whole batch — the same
// best-effort contract the teacher's SyncEvents loop had.
func (p *Processor) ProcessAll(logs []types.Log) {
	for i := range logs {
		if err := p.Process(&logs[i]); err != nil {
			if logrus.GetLevel() >= logrus.WarnLevel {
				logrus.Warnf("ingest: failed to process event %s: %v", logs[i].TxHash.Hex(), err)
			}
		}
	}
}
