package ui

import (
	"github.com/apexarb/apexarb/business/arbitrage/app"
	"github.com/apexarb/apexarb/business/arbitrage/domain"
)

// Message types for TUI updates

// ScanTickMsg is sent on every sampling tick.
type ScanTickMsg struct {
	Message string
}

// OpportunityMsg is sent when an opportunity is admitted to the slot.
type OpportunityMsg struct {
	Opportunity domain.Opportunity
}

// DroppedMsg is sent when a detected opportunity could not be admitted.
type DroppedMsg struct {
	Reason string
}

// CountdownMsg carries the decision snapshot for every countdown tick.
type CountdownMsg struct {
	Decision app.PendingDecision
}

// ResolvedMsg is sent when the pending decision resolves. Record is nil
// for resolutions that leave no ledger trace (cancel before expiry).
type ResolvedMsg struct {
	Resolution string
	Record     *domain.TradeRecord
}

// RiskVerdictMsg is sent when an advisory risk verdict attaches.
type RiskVerdictMsg struct {
	Decision app.PendingDecision
}

// ErrorMsg is sent when a command fails.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI animations.
type TickMsg struct{}
