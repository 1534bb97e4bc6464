// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Market    MarketConfig    `mapstructure:"market"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Gas       GasConfig       `mapstructure:"gas"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// MarketConfig holds market sampling configuration.
type MarketConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	ChainID             string        `mapstructure:"chain_id"`
	Venues              []string      `mapstructure:"venues"`
	SearchTerms         []string      `mapstructure:"search_terms"`
	Tokens              []string      `mapstructure:"tokens"` // base-symbol allow-list, empty = all
	PollIntervalSeconds float64       `mapstructure:"poll_interval_seconds"`
	MinPairLiquidityUSD float64       `mapstructure:"min_pair_liquidity_usd"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	RateLimitPerMinute  int           `mapstructure:"rate_limit_per_minute"`
}

// PollInterval returns the sampling interval as a Duration.
func (c *MarketConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds * float64(time.Second))
}

// ArbitrageConfig holds detection and decision configuration.
type ArbitrageConfig struct {
	AutoApprove      bool               `mapstructure:"auto_approve"`
	MinProfitUSD     float64            `mapstructure:"min_profit_usd"`
	MaxGasGwei       float64            `mapstructure:"max_gas_gwei"`
	MinLiquidityUSD  float64            `mapstructure:"min_liquidity_usd"`
	LoanAmountUSD    float64            `mapstructure:"loan_amount_usd"`
	LoanOverrides    map[string]float64 `mapstructure:"loan_overrides"` // per-pair sizing, keyed by pair id
	CountdownSeconds float64            `mapstructure:"countdown_seconds"`
	HistoryCapacity  int                `mapstructure:"history_capacity"`
	GasUnits         uint64             `mapstructure:"gas_units"`       // gas budget for the 4-step route
	NativePriceUSD   float64            `mapstructure:"native_price_usd"` // native token price for gas conversion
	TUIMode          bool               `mapstructure:"-"`                // set at runtime, not from config file
}

// MinProfitUSDDecimal returns min profit USD as decimal.Decimal.
func (c *ArbitrageConfig) MinProfitUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitUSD)
}

// MaxGasGweiDecimal returns the gas ceiling as decimal.Decimal.
func (c *ArbitrageConfig) MaxGasGweiDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxGasGwei)
}

// MinLiquidityUSDDecimal returns the liquidity floor as decimal.Decimal.
func (c *ArbitrageConfig) MinLiquidityUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinLiquidityUSD)
}

// LoanAmountUSDDecimal returns the reference loan size as decimal.Decimal.
func (c *ArbitrageConfig) LoanAmountUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.LoanAmountUSD)
}

// LoanOverridesDecimal returns per-pair loan sizes as decimals.
func (c *ArbitrageConfig) LoanOverridesDecimal() map[string]decimal.Decimal {
	if len(c.LoanOverrides) == 0 {
		return nil
	}
	result := make(map[string]decimal.Decimal, len(c.LoanOverrides))
	for pair, v := range c.LoanOverrides {
		result[pair] = decimal.NewFromFloat(v)
	}
	return result
}

// NativePriceUSDDecimal returns the native token price as decimal.Decimal.
func (c *ArbitrageConfig) NativePriceUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.NativePriceUSD)
}

// Countdown returns the decision window as a Duration.
func (c *ArbitrageConfig) Countdown() time.Duration {
	return time.Duration(c.CountdownSeconds * float64(time.Second))
}

// RiskConfig holds the external risk-scoring collaborator configuration.
type RiskConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GasConfig holds gas oracle configuration.
type GasConfig struct {
	Mode       string  `mapstructure:"mode"` // "static" or "rpc"
	RPCURL     string  `mapstructure:"rpc_url"`
	StaticGwei float64 `mapstructure:"static_gwei"`
	JitterGwei float64 `mapstructure:"jitter_gwei"` // static mode only, 0 = deterministic
}

// FeedConfig holds the websocket event feed configuration.
type FeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
	HealthPort     int    `mapstructure:"health_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("APEX")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APEX_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "APEX_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "APEX_LOG_LEVEL", "LOG_LEVEL")

	// Market
	v.BindEnv("market.base_url", "APEX_MARKET_BASE_URL")
	v.BindEnv("market.chain_id", "APEX_MARKET_CHAIN_ID")
	v.BindEnv("market.venues", "APEX_MARKET_VENUES")
	v.BindEnv("market.poll_interval_seconds", "APEX_POLL_INTERVAL_SECONDS")

	// Arbitrage
	v.BindEnv("arbitrage.auto_approve", "APEX_AUTO_APPROVE")
	v.BindEnv("arbitrage.min_profit_usd", "APEX_MIN_PROFIT_USD")
	v.BindEnv("arbitrage.max_gas_gwei", "APEX_MAX_GAS_GWEI")
	v.BindEnv("arbitrage.loan_amount_usd", "APEX_LOAN_AMOUNT_USD")
	v.BindEnv("arbitrage.countdown_seconds", "APEX_COUNTDOWN_SECONDS")
	v.BindEnv("arbitrage.history_capacity", "APEX_HISTORY_CAPACITY")

	// Risk
	v.BindEnv("risk.enabled", "APEX_RISK_ENABLED")
	v.BindEnv("risk.url", "APEX_RISK_URL")

	// Gas
	v.BindEnv("gas.mode", "APEX_GAS_MODE")
	v.BindEnv("gas.rpc_url", "APEX_GAS_RPC_URL", "ETH_RPC_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "APEX_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "APEX_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "APEX_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "apexarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Market defaults: DexScreener, Metis chain venues
	v.SetDefault("market.base_url", "https://api.dexscreener.com/latest/dex")
	v.SetDefault("market.chain_id", "metis")
	v.SetDefault("market.venues", []string{"netswap", "tethys"})
	v.SetDefault("market.search_terms", []string{"metis", "netswap", "tethys"})
	v.SetDefault("market.tokens", []string{})
	v.SetDefault("market.poll_interval_seconds", 3.0)
	v.SetDefault("market.min_pair_liquidity_usd", 1000.0)
	v.SetDefault("market.request_timeout", "10s")
	v.SetDefault("market.rate_limit_per_minute", 60)

	// Arbitrage defaults
	v.SetDefault("arbitrage.auto_approve", false)
	v.SetDefault("arbitrage.min_profit_usd", 0.0)
	v.SetDefault("arbitrage.max_gas_gwei", 50.0)
	v.SetDefault("arbitrage.min_liquidity_usd", 10000.0)
	v.SetDefault("arbitrage.loan_amount_usd", 5000.0)
	v.SetDefault("arbitrage.countdown_seconds", 3.0)
	v.SetDefault("arbitrage.history_capacity", 10)
	v.SetDefault("arbitrage.gas_units", 850000)
	v.SetDefault("arbitrage.native_price_usd", 2500.0)

	// Risk defaults
	v.SetDefault("risk.enabled", false)
	v.SetDefault("risk.timeout", "5s")

	// Gas defaults
	v.SetDefault("gas.mode", "static")
	v.SetDefault("gas.static_gwei", 30.0)
	v.SetDefault("gas.jitter_gwei", 0.0)

	// Feed defaults
	v.SetDefault("feed.enabled", false)
	v.SetDefault("feed.port", 8090)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "apexarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.health_port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Market.PollIntervalSeconds <= 0 {
		return fmt.Errorf("market.poll_interval_seconds must be positive")
	}
	if len(c.Market.Venues) == 0 {
		return fmt.Errorf("market.venues cannot be empty")
	}
	if c.Arbitrage.CountdownSeconds <= 0 {
		return fmt.Errorf("arbitrage.countdown_seconds must be positive")
	}
	if c.Arbitrage.HistoryCapacity < 1 {
		return fmt.Errorf("arbitrage.history_capacity must be at least 1")
	}
	if c.Arbitrage.LoanAmountUSD <= 0 {
		return fmt.Errorf("arbitrage.loan_amount_usd must be positive")
	}
	for pair, amount := range c.Arbitrage.LoanOverrides {
		if amount <= 0 {
			return fmt.Errorf("arbitrage.loan_overrides[%s] must be positive", pair)
		}
	}
	if c.Risk.Enabled && c.Risk.URL == "" {
		return fmt.Errorf("risk.url is required when risk.enabled is true")
	}
	switch c.Gas.Mode {
	case "static":
	case "rpc":
		if c.Gas.RPCURL == "" {
			return fmt.Errorf("gas.rpc_url is required when gas.mode is rpc")
		}
	default:
		return fmt.Errorf("gas.mode must be \"static\" or \"rpc\", got %q", c.Gas.Mode)
	}
	return nil
}
