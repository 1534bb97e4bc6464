// Package domain contains the core domain types for the market context.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarketSample is one venue's normalized view of a trading pair at a point
// in time. Samples are immutable and live for exactly one detection pass.
type MarketSample struct {
	PairID       string // "WETH/USDC"
	BaseSymbol   string
	QuoteSymbol  string
	PriceUSD     decimal.Decimal
	LiquidityUSD decimal.Decimal
	SourceVenue  string // "netswap", "tethys", ...
	ObservedAt   time.Time
}

// NewMarketSample builds a sample, deriving the pair id from the symbols.
func NewMarketSample(base, quote, venue string, priceUSD, liquidityUSD decimal.Decimal, observedAt time.Time) MarketSample {
	return MarketSample{
		PairID:       base + "/" + quote,
		BaseSymbol:   base,
		QuoteSymbol:  quote,
		PriceUSD:     priceUSD,
		LiquidityUSD: liquidityUSD,
		SourceVenue:  venue,
		ObservedAt:   observedAt,
	}
}

// FullID returns the venue-qualified identifier (e.g. "netswap:WETH/USDC").
func (s MarketSample) FullID() string {
	return s.SourceVenue + ":" + s.PairID
}

// Valid reports whether the sample carries a usable price.
func (s MarketSample) Valid() bool {
	return s.PriceUSD.IsPositive() && !s.LiquidityUSD.IsNegative()
}

// String implements fmt.Stringer.
func (s MarketSample) String() string {
	return fmt.Sprintf("%s @ %s on %s", s.PairID, s.PriceUSD.StringFixed(4), s.SourceVenue)
}
