package entity

import "time"

// CallState is the position of a session's current call attempt.
type CallState string

const (
	CallNotStarted CallState = "NOT_STARTED"
	CallPlaced     CallState = "CALL_PLACED"
	CallEnded      CallState = "CALL_ENDED"
	CallAnalyzed   CallState = "CALL_ANALYZED"
)

// callTransitions lists the forward moves allowed out of each state. Reset is
// handled separately and may be taken from anywhere.
var callTransitions = map[CallState][]CallState{
	CallNotStarted: {CallPlaced},
	CallPlaced:     {CallEnded},
	CallEnded:      {CallAnalyzed},
	CallAnalyzed:   {},
}

func CanTransition(from, to CallState) bool {
	for _, next := range callTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the per-visit state of one victim: identity from registration and
// the progress of at most one call attempt.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Contact     string    `json:"contact"`
	Address     string    `json:"address"`
	Category    string    `json:"category,omitempty"`
	CallID      string    `json:"call_id,omitempty"`
	CallState   CallState `json:"call_state"`
	CallSummary string    `json:"call_summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Session) Registered() bool {
	return s.UserID != ""
}

func (s *Session) CallStarted() bool {
	return s.CallState != "" && s.CallState != CallNotStarted
}

func (s *Session) CallAnalyzed() bool {
	return s.CallState == CallAnalyzed
}

// Advance moves the call to the given state if the transition table allows it.
func (s *Session) Advance(to CallState, now time.Time) bool {
	from := s.CallState
	if from == "" {
		from = CallNotStarted
	}
	if !CanTransition(from, to) {
		return false
	}
	s.CallState = to
	s.UpdatedAt = now
	return true
}

// Reset forgets the current call attempt. Identity fields are kept so the
// victim can place another call or file a report without registering again.
func (s *Session) Reset(now time.Time) {
	s.CallID = ""
	s.CallSummary = ""
	s.CallState = CallNotStarted
	s.UpdatedAt = now
}

// SessionView is the JSON shape of a session returned to the browser, with
// the derived call flags spelled out.
type SessionView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact"`
	Address      string    `json:"address"`
	Category     string    `json:"category,omitempty"`
	CallID       string    `json:"call_id,omitempty"`
	CallState    CallState `json:"call_state"`
	CallStarted  bool      `json:"call_started"`
	CallAnalyzed bool      `json:"call_analyzed"`
	CallSummary  string    `json:"call_summary,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Session) View() SessionView {
	state := s.CallState
	if state == "" {
		state = CallNotStarted
	}
	return SessionView{
		ID:           s.ID,
		UserID:       s.UserID,
		Name:         s.Name,
		Contact:      s.Contact,
		Address:      s.Address,
		Category:     s.Category,
		CallID:       s.CallID,
		CallState:    state,
		CallStarted:  s.CallStarted(),
		CallAnalyzed: s.CallAnalyzed(),
		CallSummary:  s.CallSummary,
		UpdatedAt:    s.UpdatedAt,
	}
}
