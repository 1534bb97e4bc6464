package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PairQuote is the cross-venue view the detector consumes: the cheapest and
// most expensive venue for one pair within a single sampling tick, plus the
// spread between them. Liquidity is the shallower of the two legs, since the
// route has to cross both pools.
type PairQuote struct {
	PairID       string
	BaseSymbol   string
	QuoteSymbol  string
	BuyVenue     string // cheapest venue
	SellVenue    string // most expensive venue
	BuyPriceUSD  decimal.Decimal
	SellPriceUSD decimal.Decimal
	LiquidityUSD decimal.Decimal
	SpreadPct    decimal.Decimal // (sell - buy) / buy * 100
	ObservedAt   time.Time
}

// BuildPairQuotes groups one tick's samples by pair and derives a quote for
// every pair seen on at least two venues. Pairs on a single venue carry no
// arbitrage information and are skipped. Output order is deterministic
// (sorted by pair id) so rejection logs are reproducible run to run.
func BuildPairQuotes(samples []MarketSample) []PairQuote {
	byPair := make(map[string][]MarketSample)
	for _, s := range samples {
		if !s.Valid() {
			continue
		}
		byPair[s.PairID] = append(byPair[s.PairID], s)
	}

	quotes := make([]PairQuote, 0, len(byPair))
	for _, group := range byPair {
		if len(group) < 2 {
			continue
		}

		buy, sell := group[0], group[0]
		for _, s := range group[1:] {
			if s.PriceUSD.LessThan(buy.PriceUSD) {
				buy = s
			}
			if s.PriceUSD.GreaterThan(sell.PriceUSD) {
				sell = s
			}
		}
		if buy.SourceVenue == sell.SourceVenue {
			continue
		}

		liquidity := buy.LiquidityUSD
		if sell.LiquidityUSD.LessThan(liquidity) {
			liquidity = sell.LiquidityUSD
		}

		spread := sell.PriceUSD.Sub(buy.PriceUSD).Div(buy.PriceUSD).Mul(hundred)

		observedAt := buy.ObservedAt
		if sell.ObservedAt.After(observedAt) {
			observedAt = sell.ObservedAt
		}

		quotes = append(quotes, PairQuote{
			PairID:       buy.PairID,
			BaseSymbol:   buy.BaseSymbol,
			QuoteSymbol:  buy.QuoteSymbol,
			BuyVenue:     buy.SourceVenue,
			SellVenue:    sell.SourceVenue,
			BuyPriceUSD:  buy.PriceUSD,
			SellPriceUSD: sell.PriceUSD,
			LiquidityUSD: liquidity,
			SpreadPct:    spread,
			ObservedAt:   observedAt,
		})
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].PairID < quotes[j].PairID })
	return quotes
}

// SpreadBps returns the spread in whole basis points, rounded down.
func (q PairQuote) SpreadBps() int64 {
	return q.SpreadPct.Mul(hundred).IntPart()
}
