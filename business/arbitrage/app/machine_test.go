package app_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexarb/apexarb/business/arbitrage/app"
	"github.com/apexarb/apexarb/business/arbitrage/domain"
	"github.com/apexarb/apexarb/internal/apperror"
	"github.com/apexarb/apexarb/internal/config"
	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/internal/logger"
)

type stubScorer struct {
	verdict domain.RiskVerdict
	err     error
	delay   time.Duration
}

func (s *stubScorer) Score(ctx context.Context, _ domain.Opportunity) (domain.RiskVerdict, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.RiskVerdict{}, ctx.Err()
		}
	}
	return s.verdict, s.err
}

func newMachine(t *testing.T, countdownSeconds float64, autoApprove bool, scorer app.RiskScorer) (*app.PendingOpportunityMachine, *app.ExecutionLedger) {
	t.Helper()

	ledger := app.NewExecutionLedger(10)
	m := app.NewPendingOpportunityMachine(
		config.ArbitrageConfig{CountdownSeconds: countdownSeconds, AutoApprove: autoApprove},
		ledger,
		scorer,
		events.NewBus(),
		logger.NewStdLogger(io.Discard, "test"),
		nil,
	)
	return m, ledger
}

func TestMachineSingleSlot(t *testing.T) {
	m, _ := newMachine(t, 60, false, nil)
	ctx := context.Background()

	first := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, first))

	err := m.Admit(ctx, testOpportunity("METIS/USDC"))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeSlotOccupied, apperror.GetCode(err))

	// The original decision is untouched by the failed admission.
	decision, ok := m.Snapshot()
	require.True(t, ok)
	assert.Equal(t, first.ID, decision.Opportunity.ID)
	assert.Equal(t, app.SlotPending, decision.State)
}

func TestMachineSingleSlotUnderBurst(t *testing.T) {
	m, _ := newMachine(t, 60, false, nil)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	admitted := make(chan uuid.UUID, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opp := testOpportunity("WETH/USDC")
			if m.Admit(ctx, opp) == nil {
				admitted <- opp.ID
			}
		}()
	}
	wg.Wait()
	close(admitted)

	var winners []uuid.UUID
	for id := range admitted {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1, "exactly one admission must win")

	decision, ok := m.Snapshot()
	require.True(t, ok)
	assert.Equal(t, winners[0], decision.Opportunity.ID)
}

func TestMachineAutoExecutesExactlyOnce(t *testing.T) {
	m, ledger := newMachine(t, 0.3, true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	require.NoError(t, m.Admit(ctx, testOpportunity("WETH/USDC")))

	require.Eventually(t, func() bool {
		_, ok := m.Snapshot()
		return !ok
	}, 2*time.Second, 20*time.Millisecond, "slot must empty after auto-execution")

	// Give the clock a few more ticks: no second record may appear.
	time.Sleep(300 * time.Millisecond)

	records := ledger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.ResolutionAutoExecuted, records[0].Resolution)
}

func TestMachineExpiredStallsUntilResolved(t *testing.T) {
	m, ledger := newMachine(t, 0.2, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))

	require.Eventually(t, func() bool {
		decision, ok := m.Snapshot()
		return ok && decision.State == app.SlotExpired
	}, 2*time.Second, 20*time.Millisecond)

	// Expiry alone produces no record and the slot stays occupied.
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ledger.Records())

	decision, ok := m.Snapshot()
	require.True(t, ok)
	assert.Equal(t, app.SlotExpired, decision.State)
	assert.Equal(t, 0.0, decision.RemainingSeconds)

	// Manual execution still works after expiry.
	require.NoError(t, m.Execute(ctx, opp.ID))

	records := ledger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.ResolutionUserExecuted, records[0].Resolution)

	_, ok = m.Snapshot()
	assert.False(t, ok, "slot must be empty after resolution")
}

func TestMachineCancelBeforeExpiryLeavesNoRecord(t *testing.T) {
	m, ledger := newMachine(t, 60, false, nil)
	ctx := context.Background()

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))
	require.NoError(t, m.Cancel(ctx, opp.ID))

	assert.Empty(t, ledger.Records())
	assert.Equal(t, 0, ledger.Totals().TradeCount)

	_, ok := m.Snapshot()
	assert.False(t, ok)
}

func TestMachineCancelAfterExpiryRecordsMiss(t *testing.T) {
	m, ledger := newMachine(t, 0.2, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))

	require.Eventually(t, func() bool {
		decision, ok := m.Snapshot()
		return ok && decision.State == app.SlotExpired
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, m.Cancel(ctx, opp.ID))

	records := ledger.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.ResolutionExpiredNoAction, records[0].Resolution)
	assert.True(t, records[0].RealizedProfitUSD.IsZero())
	assert.True(t, records[0].RealizedCostUSD.IsZero())
}

func TestMachineFirstResolutionWins(t *testing.T) {
	m, ledger := newMachine(t, 60, false, nil)
	ctx := context.Background()

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))
	require.NoError(t, m.Execute(ctx, opp.ID))

	// All later commands for the same opportunity are rejected no-ops.
	err := m.Execute(ctx, opp.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDecisionNotPending, apperror.GetCode(err))

	err = m.Cancel(ctx, opp.ID)
	require.Error(t, err)

	require.Len(t, ledger.Records(), 1)
}

func TestMachineRejectsStaleCommand(t *testing.T) {
	m, _ := newMachine(t, 60, false, nil)
	ctx := context.Background()

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))

	err := m.Execute(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeOpportunityMismatch, apperror.GetCode(err))

	// The pending decision is unaffected.
	_, ok := m.Snapshot()
	assert.True(t, ok)
}

func TestMachineAttachesRiskVerdict(t *testing.T) {
	scorer := &stubScorer{verdict: domain.RiskVerdict{Level: domain.RiskMedium, Score: 55, Reason: "moderate depth"}}
	m, _ := newMachine(t, 60, false, scorer)
	ctx := context.Background()

	require.NoError(t, m.Admit(ctx, testOpportunity("WETH/USDC")))

	require.Eventually(t, func() bool {
		decision, ok := m.Snapshot()
		return ok && decision.RiskVerdict != nil
	}, 2*time.Second, 10*time.Millisecond)

	decision, _ := m.Snapshot()
	assert.Equal(t, domain.RiskMedium, decision.RiskVerdict.Level)
	assert.Equal(t, 55, decision.RiskVerdict.Score)
}

func TestMachineScorerFailureNeverGates(t *testing.T) {
	scorer := &stubScorer{err: context.DeadlineExceeded}
	m, ledger := newMachine(t, 60, false, scorer)
	ctx := context.Background()

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))

	time.Sleep(100 * time.Millisecond)

	decision, ok := m.Snapshot()
	require.True(t, ok)
	assert.Nil(t, decision.RiskVerdict)

	// Resolution proceeds regardless of the scorer.
	require.NoError(t, m.Execute(ctx, opp.ID))
	require.Len(t, ledger.Records(), 1)
}

func TestMachineLateVerdictDiscarded(t *testing.T) {
	scorer := &stubScorer{
		verdict: domain.RiskVerdict{Level: domain.RiskLow, Score: 10},
		delay:   5 * time.Second,
	}
	m, _ := newMachine(t, 60, false, scorer)
	ctx := context.Background()

	opp := testOpportunity("WETH/USDC")
	require.NoError(t, m.Admit(ctx, opp))

	// Resolving cancels the in-flight risk call.
	require.NoError(t, m.Cancel(ctx, opp.ID))

	_, ok := m.Snapshot()
	assert.False(t, ok)
}
