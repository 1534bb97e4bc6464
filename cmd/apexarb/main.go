// Package main is the entry point for the apexarb arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	arbitrageapp "github.com/apexarb/apexarb/business/arbitrage/app"
	"github.com/apexarb/apexarb/business/arbitrage/infra/riskhttp"
	chainapp "github.com/apexarb/apexarb/business/chain/app"
	"github.com/apexarb/apexarb/business/chain/infra/ethereum"
	chainstatic "github.com/apexarb/apexarb/business/chain/infra/static"
	marketapp "github.com/apexarb/apexarb/business/market/app"
	"github.com/apexarb/apexarb/business/market/infra/dexscreener"
	"github.com/apexarb/apexarb/business/market/infra/memory"
	"github.com/apexarb/apexarb/internal/apm"
	"github.com/apexarb/apexarb/internal/config"
	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/internal/health"
	"github.com/apexarb/apexarb/internal/logger"
	"github.com/apexarb/apexarb/internal/metrics"
	"github.com/apexarb/apexarb/internal/wsfeed"
	"github.com/apexarb/apexarb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	demoMode := flag.Bool("demo", false, "Use the synthetic market source instead of DexScreener")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("apexarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode, *demoMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode, demoMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Arbitrage.TUIMode = tuiMode

	log := newLogger(cfg, tuiMode)
	if !tuiMode {
		log.Info(ctx, "starting apexarb",
			"version", version,
			"environment", cfg.App.Environment,
			"chain", cfg.Market.ChainID,
			"venues", cfg.Market.Venues,
		)
	}

	var core *metrics.Core
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort)))

		core, err = metrics.NewCore()
		if err != nil {
			return fmt.Errorf("failed to create core metrics: %w", err)
		}

		log.Info(ctx, "telemetry initialized", "prometheus_port", cfg.Telemetry.PrometheusPort)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	}
	defer healthServer.Stop(ctx)

	bus := events.NewBus()
	defer bus.Close()

	source, err := newMarketSource(cfg, log, demoMode)
	if err != nil {
		return fmt.Errorf("failed to create market source: %w", err)
	}
	sampler := marketapp.NewSampler(source, cfg.Market.PollInterval(), log)

	oracle, err := newGasOracle(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create gas oracle: %w", err)
	}

	var scorer arbitrageapp.RiskScorer
	if cfg.Risk.Enabled {
		client, err := riskhttp.New(cfg.Risk, log)
		if err != nil {
			return fmt.Errorf("failed to create risk client: %w", err)
		}
		scorer = client
	}

	ledger := arbitrageapp.NewExecutionLedger(cfg.Arbitrage.HistoryCapacity)
	machine := arbitrageapp.NewPendingOpportunityMachine(cfg.Arbitrage, ledger, scorer, bus, log, core)
	detector := arbitrageapp.NewDetector(cfg.Arbitrage, log)
	engine := arbitrageapp.NewEngine(sampler.Batches(), detector, machine, oracle, bus, log, core)

	if cfg.Feed.Enabled {
		feed := wsfeed.New(cfg.Feed.Port, bus, log)
		go func() {
			if err := feed.Start(ctx); err != nil {
				log.Error(ctx, "event feed stopped", "error", err)
			}
		}()
		defer feed.Stop(ctx)
	}

	machine.Start(ctx)
	engine.Start(ctx)
	sampler.Start(ctx)

	if tuiMode {
		return runTUI(ctx, cfg, bus, machine)
	}
	return runCLI(ctx, log, sampler, engine, machine)
}

func newLogger(cfg *config.Config, tuiMode bool) *logger.Logger {
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	// In TUI mode logs would corrupt the screen, so they are discarded.
	if tuiMode {
		return logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	}
	return logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
}

func newMarketSource(cfg *config.Config, log *logger.Logger, demoMode bool) (marketapp.MarketSource, error) {
	if demoMode {
		return memory.New(memory.DefaultPairs(), cfg.Market.Venues), nil
	}
	return dexscreener.New(cfg.Market, log)
}

func newGasOracle(cfg *config.Config, log *logger.Logger) (chainapp.GasOracle, error) {
	if cfg.Gas.Mode == "rpc" {
		return ethereum.New(cfg.Gas.RPCURL, log)
	}
	return chainstatic.New(
		decimal.NewFromFloat(cfg.Gas.StaticGwei),
		decimal.NewFromFloat(cfg.Gas.JitterGwei),
	), nil
}

func runCLI(
	ctx context.Context,
	log *logger.Logger,
	sampler *marketapp.Sampler,
	engine *arbitrageapp.Engine,
	machine *arbitrageapp.PendingOpportunityMachine,
) error {
	log.Info(ctx, "scanning for opportunities")

	<-ctx.Done()
	log.Info(ctx, "shutting down")

	<-sampler.Done()
	<-engine.Done()
	<-machine.Done()

	return nil
}

func runTUI(
	ctx context.Context,
	cfg *config.Config,
	bus *events.Bus,
	machine *arbitrageapp.PendingOpportunityMachine,
) error {
	stream, cancelSub := bus.Subscribe()
	defer cancelSub()
	go ui.Forward(ctx, stream)

	model := ui.New(machine, cfg.Arbitrage.CountdownSeconds, cfg.Arbitrage.HistoryCapacity)
	if err := ui.Run(model); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
