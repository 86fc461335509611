package intakeService

import (
	"context"
	"errors"
	"time"

	"ScamSOS/internal/api/intake"
	"ScamSOS/internal/entity"
	"ScamSOS/pkg/backend"
	contextPkg "ScamSOS/pkg/context"

	"github.com/sirupsen/logrus"
)

// Register summarises the evidence, registers the victim with the backend and
// opens a session. Nothing is stored unless the backend accepted the user.
func (s *intakeService) Register(ctx context.Context, in intake.RegisterInput) (*intake.RegisterResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	evidence, err := s.evidence.Summarize(ctx, in.Recording, in.Screenshot)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, intake.ErrSummarizationFailed
	}

	userID, err := s.backend.RegisterUser(ctx, backend.RegisterUserRequest{
		Username: in.Name,
		Address:  in.Address,
		Contact:  in.Contact,
		Context:  evidence.Summary,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to register user with backend")

		switch {
		case errors.Is(err, backend.ErrRegistrationRejected):
			return nil, intake.ErrRegistrationRejected
		case errors.Is(err, backend.ErrBackendUnavailable):
			return nil, intake.ErrBackendUnavailable
		default:
			return nil, err
		}
	}

	now := time.Now()
	sessionID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate session id")
		return nil, intake.ErrSessionNotCreated
	}

	sess := &entity.Session{
		ID:        sessionID,
		UserID:    userID,
		Name:      in.Name,
		Contact:   in.Contact,
		Address:   in.Address,
		Category:  in.Category,
		CallState: entity.CallNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Save(ctx, sess); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to save session")
		return nil, intake.ErrSessionNotCreated
	}

	token, expiresAt, err := s.signer.Sign(sess.ID, s.ttl)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign session token")
		return nil, intake.ErrSessionNotCreated
	}

	warnings := evidence.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"session_id":   sess.ID,
		"user_id":      userID,
		"has_evidence": evidence.Summary != nil,
	}).Info("Victim registered")

	return &intake.RegisterResponse{
		UserID:         userID,
		SessionToken:   token,
		ExpiresAt:      expiresAt,
		ContextSummary: evidence.Summary,
		Warnings:       warnings,
		Session:        sess.View(),
	}, nil
}
