package store

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	clmmcore "github.com/clmmsim/engine"
)

// HumanAmount renders a wei-scale integer string (as found on a PoolSnapshot)
// divided by 10^decimals, the same decimal.Decimal formatting the teacher
// used for every on-screen pool amount, kept here rather than in the core
// since the core itself never needs base-10 display.
func HumanAmount(weiAmount string, decimals uint8) (string, error) {
	i, ok := new(big.Int).SetString(weiAmount, 10)
	if !ok {
		return "", fmt.Errorf("store: invalid integer %q", weiAmount)
	}
	d := decimal.NewFromBigInt(i, 0)
	scale := decimal.New(1, int32(decimals))
	return d.DivRound(scale, int32(decimals)).String(), nil
}

// DescribeSnapshot builds a human-readable one-line summary of a pool
// snapshot's price and balances, for logging rather than for the wire
// format snapshot.go already defines.
func DescribeSnapshot(snap clmmcore.PoolSnapshot) (string, error) {
	bal0, err := HumanAmount(snap.State.Balance0, snap.Immutables.Token0.Decimals)
	if err != nil {
		return "", err
	}
	bal1, err := HumanAmount(snap.State.Balance1, snap.Immutables.Token1.Decimals)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pool=%s block=%d tick=%d %s=%s %s=%s",
		snap.Immutables.PoolAddress, snap.BlockNumber, snap.Slot0.Tick,
		snap.Immutables.Token0.Symbol, bal0,
		snap.Immutables.Token1.Symbol, bal1), nil
}
