// Package domain contains chain-level domain types shared by the gas
// oracles and the arbitrage gates.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

var weiPerGwei = decimal.NewFromInt(1_000_000_000)

// GasPrice is a gas quote in gwei at a point in time.
type GasPrice struct {
	Gwei       decimal.Decimal
	ObservedAt time.Time
}

// NewGasPrice builds a GasPrice from a gwei amount.
func NewGasPrice(gwei decimal.Decimal, observedAt time.Time) GasPrice {
	return GasPrice{Gwei: gwei, ObservedAt: observedAt}
}

// NewGasPriceFromWei converts a node-reported wei amount to gwei.
func NewGasPriceFromWei(wei *big.Int, observedAt time.Time) GasPrice {
	return GasPrice{
		Gwei:       decimal.NewFromBigInt(wei, 0).Div(weiPerGwei),
		ObservedAt: observedAt,
	}
}

// CostUSD prices a transaction of gasUnits at this gas price, given the
// USD price of the native token. gwei * units / 1e9 = native spent.
func (g GasPrice) CostUSD(gasUnits int64, nativePriceUSD decimal.Decimal) decimal.Decimal {
	native := g.Gwei.Mul(decimal.NewFromInt(gasUnits)).Div(weiPerGwei)
	return native.Mul(nativePriceUSD)
}

// Exceeds reports whether the quote is above the given gwei ceiling.
func (g GasPrice) Exceeds(maxGwei decimal.Decimal) bool {
	return g.Gwei.GreaterThanOrEqual(maxGwei)
}
