package callHandler

import (
	"errors"
	"sync"
	"time"

	"ScamSOS/internal/api/call"
	"ScamSOS/internal/entity"
	contextPkg "ScamSOS/pkg/context"
	"ScamSOS/pkg/log"
	"ScamSOS/pkg/response"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const wsWriteTimeout = 10 * time.Second

// StreamCall pushes call progress to the browser until the call is analysed,
// fails, or the client goes away. Closing the socket stops the polling.
func (h *CallHandler) StreamCall(c *websocket.Conn) {
	requestID, _ := c.Locals("X-Request-ID").(string)
	sessionID, _ := c.Locals(log.SessionIDKey).(string)

	fields := log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}
	h.log.WithFields(fields).Info("Call stream client connected")
	defer h.log.WithFields(fields).Info("Call stream client disconnected")

	ctx, cancel := context.WithTimeout(context.Background(), h.config.MaxWait()+awaitSlack)
	defer cancel()
	ctx = contextPkg.WithSessionID(contextPkg.WithRequestID(ctx, requestID), sessionID)

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Debugf("Error sending pong: %v", err)
		}
		return nil
	})

	// The browser never sends anything we act on; reading only notices the
	// close so the poll can be cancelled.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.WithFields(fields).Debugf("Call stream read error: %v", err)
				}
				return
			}
		}
	}()

	var writeMu sync.Mutex
	send := func(ev call.CallEvent) bool {
		writeMu.Lock()
		defer writeMu.Unlock()

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return false
		}
		if err := c.WriteJSON(ev); err != nil {
			h.log.WithFields(fields).Debugf("Error writing call event: %v", err)
			return false
		}
		return true
	}

	current, err := h.callService.Dispatch(ctx, sessionID, entity.ActionView)
	if err != nil {
		send(errorEvent(err))
		return
	}
	view := current.View()
	if !send(call.CallEvent{Type: call.EventState, State: view.CallState, Session: &view}) {
		return
	}

	sess, err := h.callService.AwaitCall(ctx, sessionID, func(ev call.CallEvent) {
		send(ev)
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return
		}
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Call stream ended with error")
		send(errorEvent(err))
		return
	}

	final := sess.View()
	send(call.CallEvent{Type: call.EventDone, State: final.CallState, Session: &final})

	writeMu.Lock()
	_ = c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	writeMu.Unlock()
}

func errorEvent(err error) call.CallEvent {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return call.CallEvent{Type: call.EventError, Error: respErr.Error(), Code: respErr.Slug}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return call.CallEvent{Type: call.EventError, Error: "timed out waiting for the call", Code: "TIMEOUT"}
	}
	return call.CallEvent{Type: call.EventError, Error: "An unexpected error occurred", Code: "INTERNAL_ERROR"}
}
