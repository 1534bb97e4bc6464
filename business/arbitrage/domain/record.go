package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resolution classifies how an opportunity left the decision slot with a
// ledger-visible outcome. Cancelling before expiry leaves no record, so it
// has no resolution value here.
type Resolution string

// Ledger resolutions.
const (
	ResolutionAutoExecuted    Resolution = "AUTO_EXECUTED"
	ResolutionUserExecuted    Resolution = "USER_EXECUTED"
	ResolutionExpiredNoAction Resolution = "EXPIRED_NO_ACTION"
)

// TradeRecord is the ledger entry for one resolved opportunity. Profit and
// cost are the modeled figures at execution time; EXPIRED_NO_ACTION
// records carry zeros since nothing was traded.
type TradeRecord struct {
	Opportunity       Opportunity
	Resolution        Resolution
	RealizedProfitUSD decimal.Decimal
	RealizedCostUSD   decimal.Decimal
	ResolvedAt        time.Time
}

// Executed reports whether the record represents an actual (simulated)
// trade rather than a recorded miss.
func (r TradeRecord) Executed() bool {
	return r.Resolution == ResolutionAutoExecuted || r.Resolution == ResolutionUserExecuted
}

// RunningTotals accumulates over the process lifetime; it is never evicted
// with the history.
type RunningTotals struct {
	CumulativeProfitUSD decimal.Decimal
	TradeCount          int
}

// Add folds one record into the totals. Misses count as trades with zero
// profit so the hit rate stays readable from the pair of numbers.
func (t RunningTotals) Add(r TradeRecord) RunningTotals {
	return RunningTotals{
		CumulativeProfitUSD: t.CumulativeProfitUSD.Add(r.RealizedProfitUSD),
		TradeCount:          t.TradeCount + 1,
	}
}
