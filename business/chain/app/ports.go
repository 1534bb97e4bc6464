// Package app defines the ports of the chain context.
package app

import (
	"context"

	"github.com/apexarb/apexarb/business/chain/domain"
)

// GasOracle supplies the current gas price. Implementations may query a
// node or return a configured static value.
type GasOracle interface {
	GasPrice(ctx context.Context) (domain.GasPrice, error)
}
