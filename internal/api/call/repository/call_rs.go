package callRepository

import (
	"context"
	"database/sql"
	"time"

	"ScamSOS/internal/entity"
	contextPkg "ScamSOS/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type CallAttemptDB struct {
	CallID    sql.NullString `db:"call_id"`
	SessionID sql.NullString `db:"session_id"`
	UserID    sql.NullString `db:"user_id"`
	State     sql.NullString `db:"state"`
	Outcome   sql.NullString `db:"outcome"`
	PlacedAt  time.Time      `db:"placed_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *callRepository) CreateAttempt(c context.Context, attempt entity.CallAttempt) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"call_id":    attempt.CallID,
		"session_id": attempt.SessionID,
		"user_id":    attempt.UserID,
		"state":      string(attempt.State),
		"outcome":    string(attempt.Outcome),
		"placed_at":  attempt.PlacedAt,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateAttempt, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateAttempt")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    attempt.CallID,
			"error":      err.Error(),
		}).Error("Database error when recording call attempt")
		return err
	}

	return nil
}

func (r *callRepository) UpdateOutcome(c context.Context, callID string, state entity.CallState, outcome entity.CallOutcome) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"call_id":    callID,
		"state":      string(state),
		"outcome":    string(outcome),
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateOutcome, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for UpdateOutcome")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"error":      err.Error(),
		}).Error("Database error when updating call outcome")
		return err
	}

	return nil
}

func (r *callRepository) GetAttemptsBySession(c context.Context, sessionID string) ([]entity.CallAttempt, error) {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryGetAttemptsBySession, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAttemptsBySession named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []CallAttemptDB
	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Database error when listing call attempts")
		return nil, err
	}

	attempts := make([]entity.CallAttempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, row.toEntity())
	}

	return attempts, nil
}

func (d CallAttemptDB) toEntity() entity.CallAttempt {
	return entity.CallAttempt{
		CallID:    d.CallID.String,
		SessionID: d.SessionID.String,
		UserID:    d.UserID.String,
		State:     entity.CallState(d.State.String),
		Outcome:   entity.CallOutcome(d.Outcome.String),
		PlacedAt:  d.PlacedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
