package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validConfig() Config {
	return Config{
		Market: MarketConfig{
			PollIntervalSeconds: 3.0,
			Venues:              []string{"netswap", "tethys"},
		},
		Arbitrage: ArbitrageConfig{
			CountdownSeconds: 3.0,
			HistoryCapacity:  10,
			LoanAmountUSD:    5000,
		},
		Gas: GasConfig{Mode: "static", StaticGwei: 30},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"zero poll interval", func(c *Config) { c.Market.PollIntervalSeconds = 0 }, true},
		{"no venues", func(c *Config) { c.Market.Venues = nil }, true},
		{"zero countdown", func(c *Config) { c.Arbitrage.CountdownSeconds = 0 }, true},
		{"zero history capacity", func(c *Config) { c.Arbitrage.HistoryCapacity = 0 }, true},
		{"negative loan", func(c *Config) { c.Arbitrage.LoanAmountUSD = -1 }, true},
		{"non-positive loan override", func(c *Config) {
			c.Arbitrage.LoanOverrides = map[string]float64{"WETH/USDC": 0}
		}, true},
		{"risk enabled without url", func(c *Config) { c.Risk.Enabled = true }, true},
		{"risk enabled with url", func(c *Config) {
			c.Risk.Enabled = true
			c.Risk.URL = "http://risk:8080"
		}, false},
		{"rpc mode without url", func(c *Config) { c.Gas.Mode = "rpc" }, true},
		{"unknown gas mode", func(c *Config) { c.Gas.Mode = "oracle" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	m := MarketConfig{PollIntervalSeconds: 2.5}
	if got := m.PollInterval(); got != 2500*time.Millisecond {
		t.Errorf("PollInterval() = %s, want 2.5s", got)
	}

	a := ArbitrageConfig{CountdownSeconds: 0.1}
	if got := a.Countdown(); got != 100*time.Millisecond {
		t.Errorf("Countdown() = %s, want 100ms", got)
	}
}

func TestLoanOverridesDecimal(t *testing.T) {
	a := ArbitrageConfig{LoanOverrides: map[string]float64{"WETH/USDC": 2500}}

	overrides := a.LoanOverridesDecimal()
	if len(overrides) != 1 {
		t.Fatalf("got %d overrides, want 1", len(overrides))
	}
	if !overrides["WETH/USDC"].Equal(decimal.NewFromInt(2500)) {
		t.Errorf("override = %s, want 2500", overrides["WETH/USDC"])
	}

	var empty ArbitrageConfig
	if empty.LoanOverridesDecimal() != nil {
		t.Error("empty overrides should return nil")
	}
}
