package app

import (
	"context"
	"fmt"

	chainapp "github.com/apexarb/apexarb/business/chain/app"
	marketapp "github.com/apexarb/apexarb/business/market/app"
	marketdomain "github.com/apexarb/apexarb/business/market/domain"
	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/internal/logger"
	"github.com/apexarb/apexarb/internal/metrics"
)

// Engine drives one detection pass per sampling batch: group the tick's
// samples into cross-venue quotes, price gas once, run the detector over
// each quote, and offer at most one opportunity to the decision machine.
type Engine struct {
	batches  <-chan marketapp.Batch
	detector *Detector
	machine  *PendingOpportunityMachine
	gas      chainapp.GasOracle
	bus      *events.Bus
	logger   logger.LoggerInterface
	metrics  *metrics.Core
	done     chan struct{}
}

// NewEngine wires the detection pipeline.
func NewEngine(
	batches <-chan marketapp.Batch,
	detector *Detector,
	machine *PendingOpportunityMachine,
	gas chainapp.GasOracle,
	bus *events.Bus,
	log logger.LoggerInterface,
	core *metrics.Core,
) *Engine {
	return &Engine{
		batches:  batches,
		detector: detector,
		machine:  machine,
		gas:      gas,
		bus:      bus,
		logger:   log,
		metrics:  core,
		done:     make(chan struct{}),
	}
}

// Start launches the detection loop.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

// Done is closed once the detection loop has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-e.batches:
			if !ok {
				return
			}
			e.process(ctx, batch)
		}
	}
}

func (e *Engine) process(ctx context.Context, batch marketapp.Batch) {
	e.metrics.CountTick(ctx)
	e.metrics.CountSamples(ctx, len(batch.Samples))
	e.bus.Publish(events.Now(events.KindScanTick,
		fmt.Sprintf("tick %d: %d samples", batch.Tick, len(batch.Samples)), nil))

	quotes := marketdomain.BuildPairQuotes(batch.Samples)
	if len(quotes) == 0 {
		return
	}

	gasPrice, err := e.gas.GasPrice(ctx)
	if err != nil {
		e.logger.Warn(ctx, "gas price unavailable, skipping detection pass",
			"tick", batch.Tick, "error", err)
		return
	}

	// At most one opportunity per tick; the rest of the quotes are only
	// interesting for their rejection reasons.
	for _, quote := range quotes {
		opp, rejection := e.detector.Detect(ctx, quote, gasPrice, batch.ObservedAt)
		if rejection != RejectionNone {
			e.logger.Debug(ctx, "quote rejected",
				"pair", quote.PairID, "spread_bps", quote.SpreadBps(), "reason", string(rejection))
			continue
		}

		// Admission failure (slot occupied) is logged and evented by the
		// machine; either way this tick is done.
		_ = e.machine.Admit(ctx, *opp)
		return
	}
}
