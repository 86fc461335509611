package middleware

import (
	"errors"

	"ScamSOS/internal/entity"
	"ScamSOS/internal/session"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/handlerUtil"
	jwtPkg "ScamSOS/pkg/jwt"
	"ScamSOS/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const sessionLocalKey = "session"

type sessionMiddleware struct {
	signer *jwtPkg.Signer
	store  session.Store
}

func newSessionMiddleware(signer *jwtPkg.Signer, store session.Store) *sessionMiddleware {
	return &sessionMiddleware{signer: signer, store: store}
}

// NewSessionMiddleware resolves the session token to a stored session and
// exposes both to the handlers that follow.
func (m *middleware) NewSessionMiddleware(ctx *fiber.Ctx) error {
	requestID := m.GetRequestID(ctx)
	errHandler := handlerUtil.New(m.log)

	raw, err := jwtPkg.TokenFromRequest(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Session token is required")
	}

	claims, err := m.session.signer.Verify(raw)
	if err != nil {
		m.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Debug("Rejected session token")
		return errHandler.HandleUnauthorized(ctx, requestID, "Session token is invalid or expired")
	}

	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), sessionLookupTimeout)
	defer cancel()

	sess, err := m.session.store.Get(c, claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return errHandler.HandleUnauthorized(ctx, requestID, "Session has expired, please register again")
	}
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "load_session")
	}

	ctx.Locals(log.SessionIDKey, sess.ID)
	ctx.Locals(sessionLocalKey, sess)

	return ctx.Next()
}

func (m *middleware) GetSessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(log.SessionIDKey).(string)
	return id
}

// GetSession returns the session as loaded at the start of the request.
// Services that mutate it re-read under the session lock.
func (m *middleware) GetSession(ctx *fiber.Ctx) (*entity.Session, bool) {
	sess, ok := ctx.Locals(sessionLocalKey).(*entity.Session)
	return sess, ok && sess != nil
}
