package callHandler

import (
	"time"

	"ScamSOS/internal/api/call"
	"ScamSOS/internal/entity"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/handlerUtil"
	"ScamSOS/pkg/log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const (
	actionTimeout = 30 * time.Second
	// awaitSlack covers the session writes around the two polling loops.
	awaitSlack = 30 * time.Second
)

// GetSession returns the session with its journaled call attempts.
func (h *CallHandler) GetSession(ctx *fiber.Ctx) error {
	return h.dispatch(ctx, entity.ActionView, actionTimeout, fiber.StatusOK)
}

func (h *CallHandler) StartCall(ctx *fiber.Ctx) error {
	return h.dispatch(ctx, entity.ActionStartCall, actionTimeout, fiber.StatusAccepted)
}

// AwaitCall blocks until the call is analysed or the polling bounds run out.
func (h *CallHandler) AwaitCall(ctx *fiber.Ctx) error {
	return h.dispatch(ctx, entity.ActionAwaitCall, h.config.MaxWait()+awaitSlack, fiber.StatusOK)
}

func (h *CallHandler) Reset(ctx *fiber.Ctx) error {
	return h.dispatch(ctx, entity.ActionReset, actionTimeout, fiber.StatusOK)
}

func (h *CallHandler) dispatch(ctx *fiber.Ctx, action entity.CallAction, timeout time.Duration, status int) error {
	requestID := h.middleware.GetRequestID(ctx)
	sessionID := h.middleware.GetSessionID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"action":     action,
		"path":       ctx.Path(),
	}).Debug("Processing call action")

	sess, err := h.callService.Dispatch(c, sessionID, action)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), string(action))
	}

	resp := call.SessionResponse{Session: sess.View()}
	if action == entity.ActionView {
		resp.Attempts = h.callService.Attempts(c, sessionID)
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, status, resp)
	}
}
