package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/market/domain"
)

func sample(base, quote, venue string, price, liq float64) domain.MarketSample {
	return domain.NewMarketSample(
		base, quote, venue,
		decimal.NewFromFloat(price),
		decimal.NewFromFloat(liq),
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	)
}

func TestBuildPairQuotes(t *testing.T) {
	tests := []struct {
		name    string
		samples []domain.MarketSample
		want    int
	}{
		{
			name: "two venues produce one quote",
			samples: []domain.MarketSample{
				sample("WETH", "USDC", "netswap", 2500, 100000),
				sample("WETH", "USDC", "tethys", 2525, 80000),
			},
			want: 1,
		},
		{
			name: "single venue pair is skipped",
			samples: []domain.MarketSample{
				sample("WETH", "USDC", "netswap", 2500, 100000),
			},
			want: 0,
		},
		{
			name: "equal prices on both venues carry no edge",
			samples: []domain.MarketSample{
				sample("WETH", "USDC", "netswap", 2500, 100000),
				sample("WETH", "USDC", "tethys", 2500, 80000),
			},
			want: 0,
		},
		{
			name: "invalid sample is ignored",
			samples: []domain.MarketSample{
				sample("WETH", "USDC", "netswap", 0, 100000),
				sample("WETH", "USDC", "tethys", 2525, 80000),
			},
			want: 0,
		},
		{
			name: "independent pairs each get a quote",
			samples: []domain.MarketSample{
				sample("WETH", "USDC", "netswap", 2500, 100000),
				sample("WETH", "USDC", "tethys", 2530, 80000),
				sample("METIS", "USDC", "netswap", 42, 50000),
				sample("METIS", "USDC", "tethys", 42.5, 60000),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.BuildPairQuotes(tt.samples)
			if len(got) != tt.want {
				t.Fatalf("BuildPairQuotes() returned %d quotes, want %d", len(got), tt.want)
			}
		})
	}
}

func TestBuildPairQuotesLegs(t *testing.T) {
	quotes := domain.BuildPairQuotes([]domain.MarketSample{
		sample("WETH", "USDC", "netswap", 2500, 100000),
		sample("WETH", "USDC", "tethys", 2550, 80000),
		sample("WETH", "USDC", "hermes", 2510, 120000),
	})
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}

	q := quotes[0]
	if q.BuyVenue != "netswap" {
		t.Errorf("BuyVenue = %q, want netswap", q.BuyVenue)
	}
	if q.SellVenue != "tethys" {
		t.Errorf("SellVenue = %q, want tethys", q.SellVenue)
	}
	// Shallower leg bounds the route.
	if !q.LiquidityUSD.Equal(decimal.NewFromInt(80000)) {
		t.Errorf("LiquidityUSD = %s, want 80000", q.LiquidityUSD)
	}
	// (2550-2500)/2500*100 = 2%
	if !q.SpreadPct.Equal(decimal.NewFromInt(2)) {
		t.Errorf("SpreadPct = %s, want 2", q.SpreadPct)
	}
	if q.SpreadBps() != 200 {
		t.Errorf("SpreadBps() = %d, want 200", q.SpreadBps())
	}
}

func TestBuildPairQuotesDeterministicOrder(t *testing.T) {
	samples := []domain.MarketSample{
		sample("WETH", "USDC", "netswap", 2500, 100000),
		sample("WETH", "USDC", "tethys", 2530, 80000),
		sample("METIS", "USDC", "netswap", 42, 50000),
		sample("METIS", "USDC", "tethys", 42.5, 60000),
	}

	first := domain.BuildPairQuotes(samples)
	for i := 0; i < 10; i++ {
		again := domain.BuildPairQuotes(samples)
		for j := range first {
			if again[j].PairID != first[j].PairID {
				t.Fatalf("run %d: order changed at index %d", i, j)
			}
		}
	}
}
