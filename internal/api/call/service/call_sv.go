package callService

import (
	"context"
	"errors"
	"fmt"

	"ScamSOS/internal/api/call"
	"ScamSOS/internal/entity"
	"ScamSOS/internal/session"
	"ScamSOS/pkg/backend"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/retell"

	"github.com/sirupsen/logrus"
)

var errStaleAttempt = errors.New("call attempt no longer current")

// StartCall places the outbound call once. A session whose call has already
// started is returned unchanged, so repeated clicks place a single call.
func (s *callService) StartCall(ctx context.Context, sessionID string) (*entity.Session, error) {
	requestID := contextPkg.GetRequestID(ctx)

	var placed *entity.CallAttempt

	sess, err := session.Update(ctx, s.store, sessionID, func(sess *entity.Session) error {
		if !sess.Registered() {
			return call.ErrNotRegistered
		}
		if sess.CallStarted() {
			return nil
		}

		created, err := s.retell.CreatePhoneCall(ctx, retell.CreatePhoneCallRequest{
			ToNumber: sess.Contact,
			Metadata: map[string]string{
				"user_id": sess.UserID,
				"name":    sess.Name,
				"contact": sess.Contact,
				"address": sess.Address,
			},
		})
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			}).Error("Failed to place call")
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return call.ErrCallPlacementFailed
		}

		now := s.now()
		sess.CallID = created.CallID
		sess.CallSummary = ""
		sess.Advance(entity.CallPlaced, now)

		placed = &entity.CallAttempt{
			CallID:    created.CallID,
			SessionID: sess.ID,
			UserID:    sess.UserID,
			State:     entity.CallPlaced,
			Outcome:   entity.OutcomePending,
			PlacedAt:  now,
			UpdatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, s.sessionError(err)
	}

	if placed != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"call_id":    placed.CallID,
		}).Info("Call placed")
		s.journalCreate(ctx, *placed)
	}

	return sess, nil
}

// AwaitCall polls until the call is analysed. The session lock is only held
// while a result is written back; a reset that lands while polling wins.
func (s *callService) AwaitCall(ctx context.Context, sessionID string, progress call.ProgressFunc) (*entity.Session, error) {
	requestID := contextPkg.GetRequestID(ctx)

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.CallStarted() {
		return nil, call.ErrCallNotStarted
	}

	for {
		switch sess.CallState {
		case entity.CallAnalyzed:
			return sess, nil

		case entity.CallPlaced:
			callID := sess.CallID
			if err := s.waitForEnd(ctx, callID); err != nil {
				return nil, s.pollFailed(ctx, callID, entity.CallPlaced, err)
			}

			sess, err = s.advance(ctx, sessionID, callID, entity.CallPlaced, func(sess *entity.Session) {
				sess.Advance(entity.CallEnded, s.now())
			})
			if err != nil {
				return nil, err
			}
			s.journalUpdate(ctx, callID, entity.CallEnded, entity.OutcomeEnded)
			emit(progress, call.CallEvent{Type: call.EventState, State: entity.CallEnded, Outcome: entity.OutcomeEnded}, sess)

		case entity.CallEnded:
			callID := sess.CallID
			summary, err := s.waitForAnalysis(ctx, callID)
			if err != nil {
				return nil, s.pollFailed(ctx, callID, entity.CallEnded, err)
			}

			sess, err = s.advance(ctx, sessionID, callID, entity.CallEnded, func(sess *entity.Session) {
				sess.CallSummary = summary
				sess.Advance(entity.CallAnalyzed, s.now())
			})
			if err != nil {
				return nil, err
			}
			s.journalUpdate(ctx, callID, entity.CallAnalyzed, entity.OutcomeAnalyzed)
			emit(progress, call.CallEvent{Type: call.EventState, State: entity.CallAnalyzed, Outcome: entity.OutcomeAnalyzed}, sess)

			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"call_id":    callID,
			}).Info("Call analysed")

		default:
			return nil, fmt.Errorf("session %s has unknown call state %q", sessionID, sess.CallState)
		}
	}
}

// Reset forgets the current call. An unfinished attempt is journaled as
// abandoned.
func (s *callService) Reset(ctx context.Context, sessionID string) (*entity.Session, error) {
	var abandoned string

	sess, err := session.Update(ctx, s.store, sessionID, func(sess *entity.Session) error {
		if sess.CallID != "" && !sess.CallAnalyzed() {
			abandoned = sess.CallID
		}
		sess.Reset(s.now())
		return nil
	})
	if err != nil {
		return nil, s.sessionError(err)
	}

	if abandoned != "" {
		s.journalUpdate(ctx, abandoned, entity.CallNotStarted, entity.OutcomeAbandoned)
	}

	return sess, nil
}

func (s *callService) waitForEnd(ctx context.Context, callID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	return poll(ctx, s.config.Status, func(ctx context.Context) (bool, error) {
		status, err := s.backend.GetCallStatus(ctx, callID)
		if err != nil {
			return false, err
		}
		return backend.IsTerminal(status), nil
	}, func(attempt int, err error) {
		if errors.Is(err, errNotYet) {
			return
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"attempt":    attempt,
			"error":      err.Error(),
		}).Warn("Call status check failed")
	})
}

func (s *callService) waitForAnalysis(ctx context.Context, callID string) (string, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var summary string

	err := poll(ctx, s.config.Analysis, func(ctx context.Context) (bool, error) {
		details, err := s.retell.GetCall(ctx, callID)
		if err != nil {
			return false, err
		}
		if details.CallStatus == retell.StatusError {
			return false, stopPolling(call.ErrCallFailed)
		}
		summary = details.Summary()
		return summary != "", nil
	}, func(attempt int, err error) {
		if errors.Is(err, errNotYet) {
			return
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"attempt":    attempt,
			"error":      err.Error(),
		}).Warn("Call analysis fetch failed")
	})

	return summary, err
}

// advance applies fn if the session still holds the same call in the
// expected state.
func (s *callService) advance(ctx context.Context, sessionID, callID string, expected entity.CallState, fn func(*entity.Session)) (*entity.Session, error) {
	sess, err := session.Update(ctx, s.store, sessionID, func(sess *entity.Session) error {
		if sess.CallID != callID || sess.CallState != expected {
			return errStaleAttempt
		}
		fn(sess)
		return nil
	})
	if errors.Is(err, errStaleAttempt) {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"call_id":    callID,
		}).Info("Call was reset while waiting, dropping result")
		s.journalUpdate(ctx, callID, expected, entity.OutcomeAbandoned)
		return nil, call.ErrCallSuperseded
	}
	if err != nil {
		return nil, s.sessionError(err)
	}
	return sess, nil
}

func (s *callService) pollFailed(ctx context.Context, callID string, state entity.CallState, err error) error {
	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"call_id":    callID,
		"state":      state,
		"error":      err.Error(),
	}

	switch {
	case errors.Is(err, call.ErrCallTimedOut):
		s.log.WithFields(fields).Warn("Gave up waiting for call")
		s.journalUpdate(ctx, callID, state, entity.OutcomeTimedOut)
	case errors.Is(err, call.ErrCallFailed):
		s.log.WithFields(fields).Warn("Voice platform reported the call as failed")
		s.journalUpdate(ctx, callID, state, entity.OutcomeFailed)
	default:
		s.log.WithFields(fields).Debug("Stopped waiting for call")
	}

	return err
}

func (s *callService) load(ctx context.Context, sessionID string) (*entity.Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.sessionError(err)
	}
	return sess, nil
}

func (s *callService) sessionError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return call.ErrSessionNotFound
	}
	return err
}

// Journal writes never fail the request; the journal is an operator aid.
func (s *callService) journalCreate(ctx context.Context, attempt entity.CallAttempt) {
	if err := s.repo.NewClient().Calls.CreateAttempt(ctx, attempt); err != nil {
		s.logJournalError(ctx, attempt.CallID, err)
	}
}

func (s *callService) journalUpdate(ctx context.Context, callID string, state entity.CallState, outcome entity.CallOutcome) {
	if err := s.repo.NewClient().Calls.UpdateOutcome(context.WithoutCancel(ctx), callID, state, outcome); err != nil {
		s.logJournalError(ctx, callID, err)
	}
}

// Attempts lists the journaled calls of a session, newest first. A journal
// read failure yields an empty list.
func (s *callService) Attempts(ctx context.Context, sessionID string) []entity.CallAttempt {
	attempts, err := s.repo.NewClient().Calls.GetAttemptsBySession(ctx, sessionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Failed to read call journal")
		return nil
	}
	return attempts
}

func (s *callService) logJournalError(ctx context.Context, callID string, err error) {
	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"call_id":    callID,
		"error":      err.Error(),
	}).Warn("Failed to write call journal")
}

func emit(progress call.ProgressFunc, ev call.CallEvent, sess *entity.Session) {
	if progress == nil {
		return
	}
	view := sess.View()
	ev.Session = &view
	progress(ev)
}
