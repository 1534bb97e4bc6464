// Package app contains the detection and decision services: the
// opportunity detector, the single-slot pending decision machine, and
// the execution ledger.
package app

import (
	"context"

	"github.com/apexarb/apexarb/business/arbitrage/domain"
)

// RiskScorer is the port to the external risk-scoring collaborator. The
// verdict is advisory only: callers attach it to a pending decision when
// it arrives in time and discard it otherwise.
type RiskScorer interface {
	Score(ctx context.Context, opp domain.Opportunity) (domain.RiskVerdict, error)
}
