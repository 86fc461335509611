package entity

import "time"

// CallAction names an event the browser can send against a session.
type CallAction string

const (
	ActionStartCall CallAction = "start_call"
	ActionAwaitCall CallAction = "await_call"
	ActionReset     CallAction = "reset"
	ActionView      CallAction = "view"
)

type CallOutcome string

const (
	OutcomePending   CallOutcome = "pending"
	OutcomeEnded     CallOutcome = "ended"
	OutcomeAnalyzed  CallOutcome = "analyzed"
	OutcomeTimedOut  CallOutcome = "timed_out"
	OutcomeFailed    CallOutcome = "failed"
	OutcomeAbandoned CallOutcome = "abandoned"
)

// CallAttempt is one journal row per placed call.
type CallAttempt struct {
	CallID    string      `json:"call_id"`
	SessionID string      `json:"-"`
	UserID    string      `json:"user_id"`
	State     CallState   `json:"state"`
	Outcome   CallOutcome `json:"outcome"`
	PlacedAt  time.Time   `json:"placed_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CallDetails is what the voice platform reports about a call.
type CallDetails struct {
	CallID      string
	Status      string
	CallSummary string
}
