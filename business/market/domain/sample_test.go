package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/market/domain"
)

func TestMarketSampleValid(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		liq   float64
		want  bool
	}{
		{"positive price and liquidity", 2500, 100000, true},
		{"zero liquidity is allowed", 2500, 0, true},
		{"zero price", 0, 100000, false},
		{"negative liquidity", 2500, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.NewMarketSample("WETH", "USDC", "netswap",
				decimal.NewFromFloat(tt.price), decimal.NewFromFloat(tt.liq), time.Now())
			if got := s.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarketSampleIDs(t *testing.T) {
	s := domain.NewMarketSample("WETH", "USDC", "netswap",
		decimal.NewFromInt(2500), decimal.NewFromInt(100000), time.Now())

	if s.PairID != "WETH/USDC" {
		t.Errorf("PairID = %q, want WETH/USDC", s.PairID)
	}
	if s.FullID() != "netswap:WETH/USDC" {
		t.Errorf("FullID() = %q, want netswap:WETH/USDC", s.FullID())
	}
}
