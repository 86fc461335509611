package middleware

import (
	"ScamSOS/internal/entity"
	"ScamSOS/internal/session"
	jwtPkg "ScamSOS/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewSessionMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
	GetSessionID(ctx *fiber.Ctx) string
	GetSession(ctx *fiber.Ctx) (*entity.Session, bool)
}

type middleware struct {
	session             *sessionMiddleware
	rateLimitter        *rateLimiter
	loggingMiddleware   fiber.Handler
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

func New(logger *logrus.Logger, signer *jwtPkg.Signer, store session.Store) Middleware {
	rateLimit := newRateLimiter(20, 40)
	sess := newSessionMiddleware(signer, store)
	logging := LoggerConfig()
	requestID := NewRequestIDMiddleware()

	return &middleware{
		session:             sess,
		rateLimitter:        rateLimit,
		loggingMiddleware:   logging,
		requestIDMiddleware: requestID,
		log:                 logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return m.loggingMiddleware
}
