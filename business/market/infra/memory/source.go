// Package memory provides an in-process MarketSource that synthesizes
// plausible cross-venue quotes. It backs demo mode and tests, where
// hitting a live API is either impossible or nondeterministic.
package memory

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/market/domain"
)

// SeedPair describes one synthetic pair: a mid price the venues oscillate
// around and the pooled liquidity reported for every venue leg.
type SeedPair struct {
	Base         string
	Quote        string
	MidPriceUSD  decimal.Decimal
	LiquidityUSD decimal.Decimal
}

// Source emits one sample per (pair, venue) each poll. Venue prices drift
// independently around the mid by up to ±spreadScale, so real spreads
// appear and disappear between ticks the way they do on a live chain.
type Source struct {
	pairs       []SeedPair
	venues      []string
	spreadScale float64
	rng         *rand.Rand
}

// Option configures a Source.
type Option func(*Source)

// WithSpreadScale sets the max fractional price deviation per venue
// (default 0.01, i.e. up to ~2% cross-venue spread).
func WithSpreadScale(scale float64) Option {
	return func(s *Source) { s.spreadScale = scale }
}

// WithSeed makes the price walk reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Source) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// New builds a synthetic source over the given pairs and venues.
func New(pairs []SeedPair, venues []string, opts ...Option) *Source {
	s := &Source{
		pairs:       pairs,
		venues:      venues,
		spreadScale: 0.01,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPairs is the seed set used by demo mode.
func DefaultPairs() []SeedPair {
	return []SeedPair{
		{Base: "WETH", Quote: "USDC", MidPriceUSD: decimal.NewFromInt(2500), LiquidityUSD: decimal.NewFromInt(180000)},
		{Base: "METIS", Quote: "USDC", MidPriceUSD: decimal.NewFromInt(42), LiquidityUSD: decimal.NewFromInt(95000)},
		{Base: "WBTC", Quote: "USDT", MidPriceUSD: decimal.NewFromInt(64000), LiquidityUSD: decimal.NewFromInt(220000)},
	}
}

// Poll implements app.MarketSource.
func (s *Source) Poll(_ context.Context) ([]domain.MarketSample, error) {
	now := time.Now()
	samples := make([]domain.MarketSample, 0, len(s.pairs)*len(s.venues))

	for _, p := range s.pairs {
		for _, venue := range s.venues {
			// Uniform drift in [-spreadScale, +spreadScale].
			drift := (s.rng.Float64()*2 - 1) * s.spreadScale
			price := p.MidPriceUSD.Mul(decimal.NewFromFloat(1 + drift))
			samples = append(samples, domain.NewMarketSample(
				p.Base, p.Quote, venue, price, p.LiquidityUSD, now,
			))
		}
	}

	return samples, nil
}
