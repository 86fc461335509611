package handlerUtil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ScamSOS/pkg/log"
	"ScamSOS/pkg/response"

	"github.com/gofiber/fiber/v2"
)

func TestHandleMapsErrors(t *testing.T) {
	errConflict := response.NewErrorWithSlug(http.StatusConflict, "NOT_REGISTERED", "register first")

	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		hasTrace bool
	}{
		{"domain error", errConflict, http.StatusConflict, "NOT_REGISTERED", false},
		{"wrapped domain error", fmt.Errorf("start call: %w", errConflict), http.StatusConflict, "NOT_REGISTERED", false},
		{"deadline", context.DeadlineExceeded, http.StatusRequestTimeout, "", false},
		{"lock wait deadline", fmt.Errorf("%w: %w", errors.New("timed out waiting for session lock"), context.DeadlineExceeded), http.StatusRequestTimeout, "", false},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := New(log.NewDiscardLogger())
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tc.err, "/", "test")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if tc.code == "" {
				return
			}

			var body ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code {
				t.Errorf("code = %q, want %q", body.Code, tc.code)
			}
			if (body.TraceID != "") != tc.hasTrace {
				t.Errorf("trace id = %q", body.TraceID)
			}
			if tc.hasTrace && body.Error == tc.err.Error() {
				t.Error("raw upstream error leaked to the client")
			}
		})
	}
}
