// Package app contains application services and port definitions for the
// market context.
package app

import (
	"context"

	"github.com/apexarb/apexarb/business/market/domain"
)

// MarketSource is the port to an external price/liquidity source. Poll
// performs one fetch restricted to the configured token allow-list and
// chain/venue filter. An empty slice with a nil error is a valid quiet
// tick; a non-nil error means the transport failed and the tick is lost.
type MarketSource interface {
	Poll(ctx context.Context) ([]domain.MarketSample, error)
}
