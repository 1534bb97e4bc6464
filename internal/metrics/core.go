package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Core holds the instruments for the detection and decision pipeline.
type Core struct {
	ScanTicks     metric.Int64Counter
	Samples       metric.Int64Counter
	Opportunities metric.Int64Counter
	Drops         metric.Int64Counter
	Resolutions   metric.Int64Counter
}

// NewCore creates the core instruments on the global meter provider.
func NewCore() (*Core, error) {
	meter := otel.GetMeterProvider().Meter("apexarb_core")

	scanTicks, err := meter.Int64Counter("scan_ticks_total",
		metric.WithDescription("Market sampling ticks, including quiet and failed ticks"))
	if err != nil {
		return nil, err
	}
	samples, err := meter.Int64Counter("market_samples_total",
		metric.WithDescription("Normalized market samples produced"))
	if err != nil {
		return nil, err
	}
	opportunities, err := meter.Int64Counter("opportunities_found_total",
		metric.WithDescription("Opportunities passing all admission gates"))
	if err != nil {
		return nil, err
	}
	drops, err := meter.Int64Counter("opportunities_dropped_total",
		metric.WithDescription("Detected opportunities dropped, by reason"))
	if err != nil {
		return nil, err
	}
	resolutions, err := meter.Int64Counter("decisions_resolved_total",
		metric.WithDescription("Pending decisions resolved, by kind"))
	if err != nil {
		return nil, err
	}

	return &Core{
		ScanTicks:     scanTicks,
		Samples:       samples,
		Opportunities: opportunities,
		Drops:         drops,
		Resolutions:   resolutions,
	}, nil
}

// CountTick increments the scan tick counter.
func (c *Core) CountTick(ctx context.Context) {
	if c == nil {
		return
	}
	c.ScanTicks.Add(ctx, 1)
}

// CountSamples adds to the sample counter.
func (c *Core) CountSamples(ctx context.Context, n int) {
	if c == nil {
		return
	}
	c.Samples.Add(ctx, int64(n))
}

// CountOpportunity increments the found counter.
func (c *Core) CountOpportunity(ctx context.Context) {
	if c == nil {
		return
	}
	c.Opportunities.Add(ctx, 1)
}

// CountDrop increments the drop counter with a reason label.
func (c *Core) CountDrop(ctx context.Context, reason string) {
	if c == nil {
		return
	}
	c.Drops.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// CountResolution increments the resolution counter with a kind label.
func (c *Core) CountResolution(ctx context.Context, kind string) {
	if c == nil {
		return
	}
	c.Resolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
