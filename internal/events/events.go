// Package events provides the typed event stream emitted by the detection
// and decision core. Consumers (TUI, log writers, the websocket feed,
// metrics) subscribe read-only; publishing never blocks the core.
package events

import "time"

// Kind identifies the event type.
type Kind string

// Event kinds emitted by the core.
const (
	KindScanTick           Kind = "SCAN_TICK"
	KindOpportunityFound   Kind = "OPPORTUNITY_FOUND"
	KindOpportunityDropped Kind = "OPPORTUNITY_DROPPED"
	KindDecisionResolved   Kind = "DECISION_RESOLVED"
	KindRiskVerdict        Kind = "RISK_VERDICT"
	KindCountdown          Kind = "COUNTDOWN"
)

// Event is a single entry in the stream. Payload holds the kind-specific
// value (an Opportunity for OPPORTUNITY_FOUND, a TradeRecord for
// DECISION_RESOLVED, and so on).
type Event struct {
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
	Message string    `json:"message,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

// Now builds an event stamped with the current time.
func Now(kind Kind, message string, payload any) Event {
	return Event{Kind: kind, At: time.Now(), Message: message, Payload: payload}
}
