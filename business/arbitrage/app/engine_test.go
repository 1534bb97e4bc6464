package app_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexarb/apexarb/business/arbitrage/app"
	chaindomain "github.com/apexarb/apexarb/business/chain/domain"
	marketapp "github.com/apexarb/apexarb/business/market/app"
	marketdomain "github.com/apexarb/apexarb/business/market/domain"
	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/internal/logger"
)

type fixedOracle struct {
	gwei string
}

func (o fixedOracle) GasPrice(context.Context) (chaindomain.GasPrice, error) {
	return chaindomain.NewGasPrice(dec(o.gwei), time.Now()), nil
}

func crossVenueSamples(buyPrice, sellPrice, liquidity string) []marketdomain.MarketSample {
	now := time.Now()
	return []marketdomain.MarketSample{
		marketdomain.NewMarketSample("WETH", "USDC", "netswap", dec(buyPrice), dec(liquidity), now),
		marketdomain.NewMarketSample("WETH", "USDC", "tethys", dec(sellPrice), dec(liquidity), now),
	}
}

func TestEngineAdmitsFromBatch(t *testing.T) {
	log := logger.NewStdLogger(io.Discard, "test")
	machine, ledger := newMachine(t, 60, false, nil)
	detector := newDetector(t, detectorConfig())

	batches := make(chan marketapp.Batch, 1)
	engine := app.NewEngine(batches, detector, machine, fixedOracle{gwei: "30"}, events.NewBus(), log, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	// 2% spread on deep pools clears every gate at 30 gwei.
	batches <- marketapp.Batch{Tick: 1, Samples: crossVenueSamples("2500", "2550", "1000000"), ObservedAt: time.Now()}

	require.Eventually(t, func() bool {
		_, ok := machine.Snapshot()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	decision, _ := machine.Snapshot()
	assert.Equal(t, "WETH/USDC", decision.Opportunity.PairID)
	assert.Equal(t, "netswap", decision.Opportunity.BuyVenue)
	assert.Equal(t, "tethys", decision.Opportunity.SellVenue)
	assert.Empty(t, ledger.Records())
}

func TestEngineQuietTickEmitsScanTick(t *testing.T) {
	log := logger.NewStdLogger(io.Discard, "test")
	machine, _ := newMachine(t, 60, false, nil)
	detector := newDetector(t, detectorConfig())
	bus := events.NewBus()

	stream, cancelSub := bus.Subscribe()
	defer cancelSub()

	batches := make(chan marketapp.Batch, 1)
	engine := app.NewEngine(batches, detector, machine, fixedOracle{gwei: "30"}, bus, log, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	batches <- marketapp.Batch{Tick: 7, Samples: nil, ObservedAt: time.Now()}

	select {
	case ev := <-stream:
		assert.Equal(t, events.KindScanTick, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("no SCAN_TICK for quiet batch")
	}

	_, ok := machine.Snapshot()
	assert.False(t, ok)
}

func TestEngineRejectedQuoteAdmitsNothing(t *testing.T) {
	log := logger.NewStdLogger(io.Discard, "test")
	machine, _ := newMachine(t, 60, false, nil)
	detector := newDetector(t, detectorConfig())
	bus := events.NewBus()

	stream, cancelSub := bus.Subscribe()
	defer cancelSub()

	batches := make(chan marketapp.Batch, 1)
	engine := app.NewEngine(batches, detector, machine, fixedOracle{gwei: "30"}, bus, log, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	// Boundary spread: exactly tolerance + fee, strictly rejected.
	batches <- marketapp.Batch{Tick: 1, Samples: crossVenueSamples("2500", "2525", "1000000"), ObservedAt: time.Now()}

	select {
	case ev := <-stream:
		assert.Equal(t, events.KindScanTick, ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("no SCAN_TICK")
	}

	time.Sleep(100 * time.Millisecond)
	_, ok := machine.Snapshot()
	assert.False(t, ok, "boundary spread must not be admitted")
}
