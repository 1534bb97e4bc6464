package app_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexarb/apexarb/business/arbitrage/app"
	"github.com/apexarb/apexarb/business/arbitrage/domain"
)

func testOpportunity(pairID string) domain.Opportunity {
	loan, fee := dec("5000"), dec("4.5")
	return domain.Opportunity{
		ID:           uuid.New(),
		PairID:       pairID,
		BuyVenue:     "netswap",
		SellVenue:    "tethys",
		SpreadBps:    200,
		SpreadPct:    dec("2"),
		LoanUSD:      loan,
		FlashFeeUSD:  fee,
		GasUSD:       dec("10"),
		NetProfitUSD: dec("85.5"),
		LiquidityUSD: dec("1000000"),
		Route:        domain.BuildRoute(pairID, "netswap", "tethys", loan, fee),
		CreatedAt:    time.Now(),
	}
}

func TestLedgerResolveExecuted(t *testing.T) {
	ledger := app.NewExecutionLedger(10)

	record := ledger.Resolve(testOpportunity("WETH/USDC"), domain.ResolutionAutoExecuted, time.Now())

	assert.True(t, record.Executed())
	assert.True(t, record.RealizedProfitUSD.Equal(dec("85.5")))
	// Cost = flash fee + gas.
	assert.True(t, record.RealizedCostUSD.Equal(dec("14.5")))

	totals := ledger.Totals()
	assert.Equal(t, 1, totals.TradeCount)
	assert.True(t, totals.CumulativeProfitUSD.Equal(dec("85.5")))
}

func TestLedgerResolveExpiredNoAction(t *testing.T) {
	ledger := app.NewExecutionLedger(10)

	record := ledger.Resolve(testOpportunity("WETH/USDC"), domain.ResolutionExpiredNoAction, time.Now())

	assert.False(t, record.Executed())
	assert.True(t, record.RealizedProfitUSD.IsZero())
	assert.True(t, record.RealizedCostUSD.IsZero())

	// The miss still counts toward the trade count with zero profit.
	totals := ledger.Totals()
	assert.Equal(t, 1, totals.TradeCount)
	assert.True(t, totals.CumulativeProfitUSD.IsZero())
}

func TestLedgerEviction(t *testing.T) {
	const capacity = 10
	ledger := app.NewExecutionLedger(capacity)

	for i := 0; i < capacity+1; i++ {
		ledger.Resolve(testOpportunity(fmt.Sprintf("PAIR%d/USDC", i)), domain.ResolutionUserExecuted, time.Now())
	}

	records := ledger.Records()
	require.Len(t, records, capacity)

	// Oldest evicted; most recent N retained in order.
	assert.Equal(t, "PAIR1/USDC", records[0].Opportunity.PairID)
	assert.Equal(t, fmt.Sprintf("PAIR%d/USDC", capacity), records[capacity-1].Opportunity.PairID)

	// Totals survive eviction.
	assert.Equal(t, capacity+1, ledger.Totals().TradeCount)
}
