package app_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/market/app"
	"github.com/apexarb/apexarb/business/market/domain"
	"github.com/apexarb/apexarb/internal/logger"
)

type scriptedSource struct {
	polls   int
	results []pollResult
}

type pollResult struct {
	samples []domain.MarketSample
	err     error
}

func (s *scriptedSource) Poll(context.Context) ([]domain.MarketSample, error) {
	i := s.polls
	s.polls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	r := s.results[i]
	return r.samples, r.err
}

func testSamples() []domain.MarketSample {
	return []domain.MarketSample{
		domain.NewMarketSample("WETH", "USDC", "netswap",
			decimal.NewFromInt(2500), decimal.NewFromInt(100000), time.Now()),
	}
}

func TestSamplerDeliversBatches(t *testing.T) {
	src := &scriptedSource{results: []pollResult{{samples: testSamples()}}}
	s := app.NewSampler(src, 10*time.Millisecond, logger.NewStdLogger(io.Discard, "test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case batch := <-s.Batches():
		if len(batch.Samples) != 1 {
			t.Fatalf("batch has %d samples, want 1", len(batch.Samples))
		}
	case <-time.After(time.Second):
		t.Fatal("no batch within 1s")
	}
}

func TestSamplerSkipsFailedTick(t *testing.T) {
	src := &scriptedSource{results: []pollResult{
		{err: errors.New("connection refused")},
		{samples: testSamples()},
	}}
	s := app.NewSampler(src, 10*time.Millisecond, logger.NewStdLogger(io.Discard, "test"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	// First poll fails; the loop must survive it and deliver the second.
	select {
	case batch := <-s.Batches():
		if batch.Tick == 0 {
			t.Fatalf("failed tick 0 produced a batch")
		}
	case <-time.After(time.Second):
		t.Fatal("no batch within 1s after transient failure")
	}
}

func TestSamplerStopsOnCancel(t *testing.T) {
	src := &scriptedSource{results: []pollResult{{samples: testSamples()}}}
	s := app.NewSampler(src, 10*time.Millisecond, logger.NewStdLogger(io.Discard, "test"))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop within 1s of cancel")
	}
}
