// Package domain holds the arbitrage domain model: the profitability
// math, opportunities with their flash-loan routes, and the execution
// records the ledger keeps.
package domain

import "github.com/shopspring/decimal"

// Flash loan fee of 0.09%, expressed as a fraction of the borrowed amount.
var flashFeeRate = decimal.New(9, -4)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// minSlippagePct is the floor applied to the slippage tolerance; thin
	// trades still pay at least 0.1% of headroom.
	minSlippagePct = decimal.New(1, -1)
)

// FlashFee returns the flash loan fee owed on a borrow of loanUSD.
func FlashFee(loanUSD decimal.Decimal) decimal.Decimal {
	return loanUSD.Mul(flashFeeRate)
}

// PriceImpactPct estimates how far a trade of loanUSD moves a pool holding
// liquidityUSD, as a percentage. Callers must reject non-positive
// liquidity before calling.
func PriceImpactPct(loanUSD, liquidityUSD decimal.Decimal) decimal.Decimal {
	return loanUSD.Div(liquidityUSD).Mul(hundred)
}

// SlippageTolerancePct derives the slippage budget from the price impact:
// twice the impact, rounded to two decimals, floored at 0.1%.
func SlippageTolerancePct(priceImpactPct decimal.Decimal) decimal.Decimal {
	tolerance := priceImpactPct.Mul(two).Round(2)
	if tolerance.LessThan(minSlippagePct) {
		return minSlippagePct
	}
	return tolerance
}

// Admissible reports whether a spread clears the slippage tolerance plus
// the flash fee with strictly positive headroom. Equality is not enough:
// a spread exactly at the threshold nets zero before gas.
func Admissible(spreadPct, slippageTolerancePct decimal.Decimal) bool {
	threshold := slippageTolerancePct.Add(flashFeeRate.Mul(hundred))
	return spreadPct.GreaterThan(threshold)
}

// NetProfit is the expected USD profit of executing the route: gross
// spread capture minus the flash fee and the gas cost.
func NetProfit(loanUSD, spreadPct, gasUSD decimal.Decimal) decimal.Decimal {
	gross := loanUSD.Mul(spreadPct).Div(hundred)
	return gross.Sub(FlashFee(loanUSD)).Sub(gasUSD)
}
