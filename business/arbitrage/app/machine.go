package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apexarb/apexarb/business/arbitrage/domain"
	"github.com/apexarb/apexarb/internal/apperror"
	"github.com/apexarb/apexarb/internal/config"
	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/internal/logger"
	"github.com/apexarb/apexarb/internal/metrics"
)

// SlotState is the decision slot's lifecycle state.
type SlotState string

// Slot states. Terminal resolutions empty the slot immediately, so only
// these three are observable.
const (
	SlotEmpty   SlotState = "EMPTY"
	SlotPending SlotState = "PENDING"
	SlotExpired SlotState = "EXPIRED"
)

// tickStep is the countdown granularity.
const tickStep = 100 * time.Millisecond

// PendingDecision is a read-only snapshot of the slot for consumers.
type PendingDecision struct {
	Opportunity      domain.Opportunity
	RemainingSeconds float64
	AutoExecutable   bool
	State            SlotState
	RiskVerdict      *domain.RiskVerdict
}

// PendingOpportunityMachine owns the single system-wide decision slot. One
// mutex guards all slot state; the countdown runs on the machine's own
// clock and is never blocked by network calls. An opportunity admitted
// while the slot is occupied is dropped, never queued.
type PendingOpportunityMachine struct {
	mu         sync.Mutex
	state      SlotState
	opp        domain.Opportunity
	remaining  float64
	auto       bool
	verdict    *domain.RiskVerdict
	cancelRisk context.CancelFunc

	countdown   float64
	autoApprove bool
	ledger      *ExecutionLedger
	scorer      RiskScorer
	bus         *events.Bus
	logger      logger.LoggerInterface
	metrics     *metrics.Core

	baseCtx context.Context
	done    chan struct{}
}

// NewPendingOpportunityMachine builds the machine. scorer may be nil when
// risk scoring is disabled; metrics may be nil.
func NewPendingOpportunityMachine(
	cfg config.ArbitrageConfig,
	ledger *ExecutionLedger,
	scorer RiskScorer,
	bus *events.Bus,
	log logger.LoggerInterface,
	core *metrics.Core,
) *PendingOpportunityMachine {
	return &PendingOpportunityMachine{
		state:       SlotEmpty,
		countdown:   cfg.CountdownSeconds,
		autoApprove: cfg.AutoApprove,
		ledger:      ledger,
		scorer:      scorer,
		bus:         bus,
		logger:      log,
		metrics:     core,
		baseCtx:     context.Background(),
		done:        make(chan struct{}),
	}
}

// Start launches the countdown clock. The clock stops when ctx is
// cancelled; risk calls inherit ctx so they die with the machine.
func (m *PendingOpportunityMachine) Start(ctx context.Context) {
	m.mu.Lock()
	m.baseCtx = ctx
	m.mu.Unlock()

	go m.run(ctx)
}

// Done is closed once the clock goroutine has stopped.
func (m *PendingOpportunityMachine) Done() <-chan struct{} {
	return m.done
}

func (m *PendingOpportunityMachine) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(tickStep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// Admit offers an opportunity to the slot. The auto-execute flag is
// latched from configuration at this instant; flipping the config later
// never affects an already-pending decision.
func (m *PendingOpportunityMachine) Admit(ctx context.Context, opp domain.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SlotEmpty {
		m.logger.Info(ctx, "decision slot occupied, dropping opportunity",
			"dropped", opp.String(), "pending", m.opp.ID)
		m.metrics.CountDrop(ctx, string(RejectionSlotOccupied))
		m.bus.Publish(events.Now(events.KindOpportunityDropped, string(RejectionSlotOccupied), opp))
		return apperror.Invariant(apperror.CodeSlotOccupied, "pending="+m.opp.ID.String())
	}

	m.state = SlotPending
	m.opp = opp
	m.remaining = m.countdown
	m.auto = m.autoApprove
	m.verdict = nil

	if m.scorer != nil {
		riskCtx, cancel := context.WithCancel(m.baseCtx)
		m.cancelRisk = cancel
		go m.score(riskCtx, opp)
	}

	m.logger.Info(ctx, "opportunity admitted",
		"opportunity", opp.String(), "countdown_s", m.countdown, "auto", m.auto)
	m.metrics.CountOpportunity(ctx)
	m.bus.Publish(events.Now(events.KindOpportunityFound, opp.String(), opp))

	return nil
}

// tick advances the countdown by one step. Reaching zero auto-executes
// when the flag was latched, otherwise the slot stalls at zero awaiting an
// explicit execute or cancel; it never re-expires and never auto-cancels.
func (m *PendingOpportunityMachine) tick(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SlotPending {
		return
	}

	m.remaining -= tickStep.Seconds()
	if m.remaining > 0 {
		m.bus.Publish(events.Now(events.KindCountdown, "", m.snapshotLocked()))
		return
	}

	m.remaining = 0
	if m.auto {
		m.resolveLocked(ctx, domain.ResolutionAutoExecuted)
		return
	}

	m.state = SlotExpired
	m.logger.Info(ctx, "decision window expired, awaiting manual resolution", "opportunity", m.opp.String())
	m.bus.Publish(events.Now(events.KindCountdown, "expired", m.snapshotLocked()))
}

// Execute manually executes the identified decision, pending or
// expired-stalled.
func (m *PendingOpportunityMachine) Execute(ctx context.Context, oppID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkCommandLocked(oppID); err != nil {
		return err
	}

	m.resolveLocked(ctx, domain.ResolutionUserExecuted)
	return nil
}

// Cancel manually cancels the identified decision. Cancelling before
// expiry leaves no ledger trace; cancelling an expired-stalled decision
// records the miss as EXPIRED_NO_ACTION.
func (m *PendingOpportunityMachine) Cancel(ctx context.Context, oppID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkCommandLocked(oppID); err != nil {
		return err
	}

	if m.state == SlotExpired {
		m.resolveLocked(ctx, domain.ResolutionExpiredNoAction)
		return nil
	}

	m.stopRiskLocked()
	m.logger.Info(ctx, "decision cancelled by user", "opportunity", m.opp.String())
	m.metrics.CountResolution(ctx, "USER_CANCELLED")
	m.bus.Publish(events.Now(events.KindDecisionResolved, "USER_CANCELLED", m.opp))
	m.state = SlotEmpty

	return nil
}

// Snapshot returns the current decision, if any.
func (m *PendingOpportunityMachine) Snapshot() (PendingDecision, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == SlotEmpty {
		return PendingDecision{}, false
	}
	return m.snapshotLocked(), true
}

func (m *PendingOpportunityMachine) checkCommandLocked(oppID uuid.UUID) error {
	if m.state == SlotEmpty {
		return apperror.Invariant(apperror.CodeDecisionNotPending, "slot empty")
	}
	if m.opp.ID != oppID {
		// Stale command for an already-resolved opportunity.
		return apperror.Invariant(apperror.CodeOpportunityMismatch,
			"want "+m.opp.ID.String()+" got "+oppID.String())
	}
	return nil
}

// resolveLocked performs the single ledger-visible resolution and empties
// the slot. Callers hold the mutex, so exactly one resolution can win.
func (m *PendingOpportunityMachine) resolveLocked(ctx context.Context, resolution domain.Resolution) {
	m.stopRiskLocked()

	record := m.ledger.Resolve(m.opp, resolution, time.Now())
	m.logger.Info(ctx, "decision resolved",
		"opportunity", m.opp.String(),
		"resolution", string(resolution),
		"realized_profit_usd", record.RealizedProfitUSD.StringFixed(2))
	m.metrics.CountResolution(ctx, string(resolution))
	m.bus.Publish(events.Now(events.KindDecisionResolved, string(resolution), record))

	m.state = SlotEmpty
}

func (m *PendingOpportunityMachine) stopRiskLocked() {
	if m.cancelRisk != nil {
		m.cancelRisk()
		m.cancelRisk = nil
	}
}

func (m *PendingOpportunityMachine) snapshotLocked() PendingDecision {
	d := PendingDecision{
		Opportunity:      m.opp,
		RemainingSeconds: m.remaining,
		AutoExecutable:   m.auto,
		State:            m.state,
	}
	if m.verdict != nil {
		v := *m.verdict
		d.RiskVerdict = &v
	}
	return d
}

// score runs the advisory risk call. The verdict is attached only if the
// same opportunity is still unresolved when it arrives; failures are
// logged and the verdict simply stays absent.
func (m *PendingOpportunityMachine) score(ctx context.Context, opp domain.Opportunity) {
	verdict, err := m.scorer.Score(ctx, opp)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == SlotEmpty || m.opp.ID != opp.ID {
		return
	}

	if err != nil {
		m.logger.Warn(ctx, "risk scoring failed, proceeding without verdict",
			"opportunity", opp.ID, "error", err)
		return
	}
	if !verdict.Valid() {
		m.logger.Warn(ctx, "risk scorer returned malformed verdict, discarding",
			"opportunity", opp.ID, "level", string(verdict.Level), "score", verdict.Score)
		return
	}

	m.verdict = &verdict
	m.bus.Publish(events.Now(events.KindRiskVerdict, string(verdict.Level), m.snapshotLocked()))
}
