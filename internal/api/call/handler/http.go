package callHandler

import (
	callService "ScamSOS/internal/api/call/service"
	"ScamSOS/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type CallHandler struct {
	log         *logrus.Logger
	middleware  middleware.Middleware
	callService callService.ICallService
	config      callService.Config
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	cs callService.ICallService,
	config callService.Config,
) *CallHandler {
	return &CallHandler{
		log:         log,
		middleware:  middleware,
		callService: cs,
		config:      config,
	}
}

func (h *CallHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/session", h.middleware.NewSessionMiddleware, h.GetSession)

	srv.Post("/calls", h.middleware.NewRateLimiter, h.middleware.NewSessionMiddleware, h.StartCall)
	srv.Post("/calls/wait", h.middleware.NewSessionMiddleware, h.AwaitCall)
	srv.Post("/calls/reset", h.middleware.NewSessionMiddleware, h.Reset)

	srv.Use("/calls/ws", wsMiddleware)
	srv.Get("/calls/ws", h.middleware.NewSessionMiddleware, websocket.New(h.StreamCall))
}
