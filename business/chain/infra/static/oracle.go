// Package static implements a configuration-driven gas oracle for demo
// mode and environments without a reachable node.
package static

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/chain/domain"
)

// Oracle returns a fixed gwei value, optionally dithered by ±jitter so
// the gas gate still sees movement between ticks.
type Oracle struct {
	gwei   decimal.Decimal
	jitter decimal.Decimal
	rng    *rand.Rand
}

// New builds a static oracle. jitterGwei of zero disables dithering.
func New(gwei, jitterGwei decimal.Decimal) *Oracle {
	return &Oracle{
		gwei:   gwei,
		jitter: jitterGwei,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// GasPrice implements app.GasOracle. It never fails.
func (o *Oracle) GasPrice(_ context.Context) (domain.GasPrice, error) {
	gwei := o.gwei
	if o.jitter.IsPositive() {
		// Uniform in [-jitter, +jitter], floored at zero.
		offset := o.jitter.Mul(decimal.NewFromFloat(o.rng.Float64()*2 - 1))
		gwei = gwei.Add(offset)
		if gwei.IsNegative() {
			gwei = decimal.Zero
		}
	}
	return domain.NewGasPrice(gwei, time.Now()), nil
}
