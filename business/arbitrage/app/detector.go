package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/arbitrage/domain"
	chaindomain "github.com/apexarb/apexarb/business/chain/domain"
	marketdomain "github.com/apexarb/apexarb/business/market/domain"
	"github.com/apexarb/apexarb/internal/config"
	"github.com/apexarb/apexarb/internal/logger"
)

// Rejection names the first gate a quote failed. Empty means admitted.
type Rejection string

// Rejection reasons, one per gate, in evaluation order. SlotOccupied is
// produced by the decision machine, not the detector.
const (
	RejectionNone         Rejection = ""
	RejectionLowLiquidity Rejection = "low_liquidity"
	RejectionGasTooHigh   Rejection = "gas_too_high"
	RejectionThinSpread   Rejection = "spread_below_tolerance"
	RejectionUnprofitable Rejection = "unprofitable"
	RejectionInvariant    Rejection = "invariant_violation"
	RejectionSlotOccupied Rejection = "slot_occupied"
)

// Detector applies the profitability model to cross-venue quotes. It is
// stateless: every call is independent and runs even while a decision is
// pending.
type Detector struct {
	loanUSD       decimal.Decimal
	loanOverrides map[string]decimal.Decimal
	minLiquidity  decimal.Decimal
	maxGasGwei    decimal.Decimal
	minProfitUSD  decimal.Decimal
	gasUnits      int64
	nativePrice   decimal.Decimal
	logger        logger.LoggerInterface
}

// NewDetector builds a Detector from the arbitrage config section.
func NewDetector(cfg config.ArbitrageConfig, log logger.LoggerInterface) *Detector {
	return &Detector{
		loanUSD:       cfg.LoanAmountUSDDecimal(),
		loanOverrides: cfg.LoanOverridesDecimal(),
		minLiquidity:  cfg.MinLiquidityUSDDecimal(),
		maxGasGwei:    cfg.MaxGasGweiDecimal(),
		minProfitUSD:  cfg.MinProfitUSDDecimal(),
		gasUnits:      int64(cfg.GasUnits),
		nativePrice:   cfg.NativePriceUSDDecimal(),
		logger:        log,
	}
}

// LoanFor returns the loan size for a pair: the per-pair override when one
// is configured, the reference amount otherwise.
func (d *Detector) LoanFor(pairID string) decimal.Decimal {
	if loan, ok := d.loanOverrides[pairID]; ok {
		return loan
	}
	return d.loanUSD
}

// Detect evaluates one quote against the gates, in order, short-circuit:
// liquidity depth, gas ceiling, slippage-adjusted spread admission, net
// profit. The first failed gate is returned as the rejection reason; a nil
// opportunity with RejectionNone cannot happen.
func (d *Detector) Detect(ctx context.Context, quote marketdomain.PairQuote, gas chaindomain.GasPrice, now time.Time) (*domain.Opportunity, Rejection) {
	if quote.LiquidityUSD.LessThan(d.minLiquidity) || !quote.LiquidityUSD.IsPositive() {
		return nil, RejectionLowLiquidity
	}

	if gas.Exceeds(d.maxGasGwei) {
		return nil, RejectionGasTooHigh
	}

	loan := d.LoanFor(quote.PairID)
	impact := domain.PriceImpactPct(loan, quote.LiquidityUSD)
	tolerance := domain.SlippageTolerancePct(impact)
	if !domain.Admissible(quote.SpreadPct, tolerance) {
		return nil, RejectionThinSpread
	}

	gasUSD := gas.CostUSD(d.gasUnits, d.nativePrice)
	net := domain.NetProfit(loan, quote.SpreadPct, gasUSD)
	if !net.IsPositive() || net.LessThan(d.minProfitUSD) {
		return nil, RejectionUnprofitable
	}

	fee := domain.FlashFee(loan)
	opp := &domain.Opportunity{
		ID:           uuid.New(),
		PairID:       quote.PairID,
		BuyVenue:     quote.BuyVenue,
		SellVenue:    quote.SellVenue,
		BuyPriceUSD:  quote.BuyPriceUSD,
		SellPriceUSD: quote.SellPriceUSD,
		SpreadBps:    quote.SpreadBps(),
		SpreadPct:    quote.SpreadPct,
		LoanUSD:      loan,
		FlashFeeUSD:  fee,
		GasUSD:       gasUSD,
		NetProfitUSD: net,
		LiquidityUSD: quote.LiquidityUSD,
		Route:        domain.BuildRoute(quote.PairID, quote.BuyVenue, quote.SellVenue, loan, fee),
		CreatedAt:    now,
	}

	if err := opp.Validate(); err != nil {
		d.logger.Error(ctx, "detected opportunity failed validation, dropping", "opportunity", opp.String(), "error", err)
		return nil, RejectionInvariant
	}

	return opp, RejectionNone
}
