package app

import (
	"context"
	"time"

	"github.com/apexarb/apexarb/business/market/domain"
	"github.com/apexarb/apexarb/internal/logger"
)

// Batch is the product of one sampling tick.
type Batch struct {
	Tick       uint64
	Samples    []domain.MarketSample
	ObservedAt time.Time
}

// Sampler polls the market source on a fixed interval and publishes one
// Batch per successful tick. A transport failure skips the tick with a
// warning and polling resumes on the next tick: failures are treated as
// transient and independent, so there is no backoff escalation and no
// circuit breaker on this path.
type Sampler struct {
	source   MarketSource
	interval time.Duration
	timeout  time.Duration
	logger   logger.LoggerInterface

	batches chan Batch
	done    chan struct{}
}

// NewSampler creates a Sampler. The per-poll timeout is capped at the
// interval so a stalled fetch can never delay the next tick.
func NewSampler(source MarketSource, interval time.Duration, log logger.LoggerInterface) *Sampler {
	timeout := interval
	if timeout > 10*time.Second {
		timeout = 10 * time.Second
	}
	return &Sampler{
		source:   source,
		interval: interval,
		timeout:  timeout,
		logger:   log,
		batches:  make(chan Batch, 1),
		done:     make(chan struct{}),
	}
}

// Batches returns the stream of sampling results.
func (s *Sampler) Batches() <-chan Batch {
	return s.batches
}

// Start launches the polling loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (s *Sampler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Done is closed once the polling loop has fully stopped.
func (s *Sampler) Done() <-chan struct{} {
	return s.done
}

func (s *Sampler) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.batches)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var tick uint64

	// Poll immediately rather than waiting a full interval for first data.
	s.poll(ctx, tick)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sampler stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			tick++
			s.poll(ctx, tick)
		}
	}
}

func (s *Sampler) poll(ctx context.Context, tick uint64) {
	pollCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	samples, err := s.source.Poll(pollCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn(ctx, "market poll failed, skipping tick", "tick", tick, "error", err)
		return
	}

	batch := Batch{Tick: tick, Samples: samples, ObservedAt: time.Now()}

	select {
	case s.batches <- batch:
	default:
		// Consumer still busy with the previous batch; market data is
		// perishable, so replace rather than queue.
		select {
		case <-s.batches:
		default:
		}
		select {
		case s.batches <- batch:
		default:
		}
	}
}
