package call

import "ScamSOS/internal/entity"

type EventType string

const (
	EventState EventType = "state"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// CallEvent is one message on the call progress stream.
type CallEvent struct {
	Type    EventType           `json:"type"`
	State   entity.CallState    `json:"state,omitempty"`
	Outcome entity.CallOutcome  `json:"outcome,omitempty"`
	Session *entity.SessionView `json:"session,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    string              `json:"code,omitempty"`
}

// ProgressFunc receives an event each time the call moves forward.
type ProgressFunc func(CallEvent)

type SessionResponse struct {
	Session  entity.SessionView   `json:"session"`
	Attempts []entity.CallAttempt `json:"attempts,omitempty"`
}
