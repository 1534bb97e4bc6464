package app

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/arbitrage/domain"
)

// ExecutionLedger keeps the most recent N trade records plus running
// totals that survive eviction. One mutex owns both so a record and its
// totals update are always observed together.
type ExecutionLedger struct {
	mu       sync.Mutex
	capacity int
	history  []domain.TradeRecord
	totals   domain.RunningTotals
}

// NewExecutionLedger creates a ledger with the given history capacity.
func NewExecutionLedger(capacity int) *ExecutionLedger {
	if capacity < 1 {
		capacity = 1
	}
	return &ExecutionLedger{
		capacity: capacity,
		history:  make([]domain.TradeRecord, 0, capacity),
	}
}

// Resolve materializes the outcome of an opportunity into a record and
// appends it. Executed resolutions realize the modeled profit and costs;
// EXPIRED_NO_ACTION records the miss with zeros.
func (l *ExecutionLedger) Resolve(opp domain.Opportunity, resolution domain.Resolution, at time.Time) domain.TradeRecord {
	record := domain.TradeRecord{
		Opportunity: opp,
		Resolution:  resolution,
		ResolvedAt:  at,
	}
	if record.Executed() {
		record.RealizedProfitUSD = opp.NetProfitUSD
		record.RealizedCostUSD = opp.FlashFeeUSD.Add(opp.GasUSD)
	} else {
		record.RealizedProfitUSD = decimal.Zero
		record.RealizedCostUSD = decimal.Zero
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.history) == l.capacity {
		copy(l.history, l.history[1:])
		l.history = l.history[:len(l.history)-1]
	}
	l.history = append(l.history, record)
	l.totals = l.totals.Add(record)

	return record
}

// Records returns the history, oldest first.
func (l *ExecutionLedger) Records() []domain.TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.TradeRecord, len(l.history))
	copy(out, l.history)
	return out
}

// Totals returns the running totals.
func (l *ExecutionLedger) Totals() domain.RunningTotals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals
}
