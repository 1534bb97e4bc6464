package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/internal/apperror"
)

// StepKind identifies one leg of a flash-loan route.
type StepKind string

// Route step kinds, in execution order.
const (
	StepBorrow StepKind = "BORROW"
	StepBuy    StepKind = "BUY"
	StepSell   StepKind = "SELL"
	StepRepay  StepKind = "REPAY"
)

// RouteStep is one leg of the atomic route. Index is 1-based.
type RouteStep struct {
	Index       int
	Kind        StepKind
	Description string
}

// Opportunity is an admissible arbitrage found by the detector. Immutable
// once created; the detector only constructs one after every gate passed.
type Opportunity struct {
	ID           uuid.UUID
	PairID       string
	BuyVenue     string
	SellVenue    string
	BuyPriceUSD  decimal.Decimal
	SellPriceUSD decimal.Decimal
	SpreadBps    int64
	SpreadPct    decimal.Decimal
	LoanUSD      decimal.Decimal
	FlashFeeUSD  decimal.Decimal
	GasUSD       decimal.Decimal
	NetProfitUSD decimal.Decimal
	LiquidityUSD decimal.Decimal
	Route        []RouteStep
	CreatedAt    time.Time
}

// BuildRoute lays out the canonical four-step flash-loan route: borrow the
// quote asset, buy on the cheap venue, sell on the dear one, repay the
// loan plus fee.
func BuildRoute(pairID, buyVenue, sellVenue string, loanUSD, feeUSD decimal.Decimal) []RouteStep {
	repay := loanUSD.Add(feeUSD)
	return []RouteStep{
		{Index: 1, Kind: StepBorrow, Description: fmt.Sprintf("flash-borrow $%s", loanUSD.StringFixed(2))},
		{Index: 2, Kind: StepBuy, Description: fmt.Sprintf("buy %s on %s", pairID, buyVenue)},
		{Index: 3, Kind: StepSell, Description: fmt.Sprintf("sell %s on %s", pairID, sellVenue)},
		{Index: 4, Kind: StepRepay, Description: fmt.Sprintf("repay $%s", repay.StringFixed(2))},
	}
}

// ValidateRoute enforces the route shape: at least two steps, contiguous
// 1-based indexes, BORROW first, REPAY last, exactly one of each.
func ValidateRoute(steps []RouteStep) error {
	if len(steps) < 2 {
		return apperror.Invariant(apperror.CodeInvalidRoute,
			fmt.Sprintf("route has %d steps", len(steps)))
	}

	borrows, repays := 0, 0
	for i, s := range steps {
		if s.Index != i+1 {
			return apperror.Invariant(apperror.CodeInvalidRoute,
				fmt.Sprintf("step %d has index %d", i, s.Index))
		}
		switch s.Kind {
		case StepBorrow:
			borrows++
		case StepRepay:
			repays++
		case StepBuy, StepSell:
		default:
			return apperror.Invariant(apperror.CodeInvalidRoute,
				"unknown step kind "+string(s.Kind))
		}
	}

	if borrows != 1 || repays != 1 ||
		steps[0].Kind != StepBorrow || steps[len(steps)-1].Kind != StepRepay {
		return apperror.Invariant(apperror.CodeInvalidRoute,
			fmt.Sprintf("borrows=%d repays=%d", borrows, repays))
	}

	return nil
}

// Validate checks the opportunity invariants that must hold on creation.
func (o Opportunity) Validate() error {
	if o.SpreadBps <= 0 {
		return apperror.Invariant(apperror.CodeInvalidRoute,
			fmt.Sprintf("spread_bps=%d", o.SpreadBps))
	}
	if !o.LoanUSD.IsPositive() {
		return apperror.Invariant(apperror.CodeInvalidLoanAmount,
			"loan_usd="+o.LoanUSD.String())
	}
	if o.GasUSD.IsNegative() {
		return apperror.Invariant(apperror.CodeInvalidRoute,
			"gas_usd="+o.GasUSD.String())
	}
	return ValidateRoute(o.Route)
}

// String implements fmt.Stringer for logs.
func (o Opportunity) String() string {
	return fmt.Sprintf("%s %s->%s spread=%dbps net=$%s",
		o.PairID, o.BuyVenue, o.SellVenue, o.SpreadBps, o.NetProfitUSD.StringFixed(2))
}
