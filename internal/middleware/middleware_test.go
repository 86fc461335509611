package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ScamSOS/internal/entity"
	"ScamSOS/internal/session"
	jwtPkg "ScamSOS/pkg/jwt"
	"ScamSOS/pkg/log"

	"github.com/gofiber/fiber/v2"
)

func TestSanitizeRequestBodyRedactsVictimDetails(t *testing.T) {
	out := sanitizeRequestBody(fiber.MIMEApplicationJSON, []byte(`{"name":"Tan","situation":"lost S$900","format":"pdf"}`))

	if strings.Contains(out, "Tan") || strings.Contains(out, "S$900") {
		t.Fatalf("personal data leaked: %s", out)
	}
	if !strings.Contains(out, `"format":"pdf"`) {
		t.Fatalf("non-personal field dropped: %s", out)
	}

	if got := sanitizeRequestBody(fiber.MIMEMultipartForm+"; boundary=x", []byte("--x")); got != "[multipart body]" {
		t.Fatalf("multipart body = %q", got)
	}
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	m := &middleware{rateLimitter: newRateLimiter(0, 2), log: log.NewDiscardLogger()}

	app := fiber.New()
	app.Get("/", m.NewRateLimiter, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	var last int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		last = resp.StatusCode
	}
	if last != fiber.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last)
	}
}

func TestSessionMiddleware(t *testing.T) {
	signer, _ := jwtPkg.NewSigner("test-secret")
	store := session.NewMemoryStore(time.Hour)
	_ = store.Save(context.Background(), &entity.Session{ID: "sess-1", UserID: "user-1"})

	m := New(log.NewDiscardLogger(), signer, store)
	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/me", m.NewSessionMiddleware, func(c *fiber.Ctx) error {
		sess, ok := m.GetSession(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(sess.ID + ":" + m.GetSessionID(c))
	})

	valid, _, _ := signer.Sign("sess-1", time.Hour)
	orphan, _, _ := signer.Sign("sess-gone", time.Hour)
	expired, _, _ := signer.Sign("sess-1", -time.Minute)

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"bearer header", "/me", "Bearer " + valid, fiber.StatusOK},
		{"query token", "/me?token=" + valid, "", fiber.StatusOK},
		{"missing token", "/me", "", fiber.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", fiber.StatusUnauthorized},
		{"expired token", "/me", "Bearer " + expired, fiber.StatusUnauthorized},
		{"unknown session", "/me", "Bearer " + orphan, fiber.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if resp.Header.Get(RequestIDKey) == "" {
				t.Error("missing request id header")
			}
		})
	}
}

func TestRateLimiterForgetsIdleVisitors(t *testing.T) {
	r := newRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.allow("10.0.0.1")
	now = now.Add(visitorIdleTTL + time.Minute)
	r.allow("10.0.0.2")

	if _, ok := r.visitors["10.0.0.1"]; ok {
		t.Fatal("idle visitor was not swept")
	}
	if len(r.visitors) != 1 {
		t.Fatalf("visitors = %d, want 1", len(r.visitors))
	}
}

func TestValidRequestID(t *testing.T) {
	for id, want := range map[string]bool{
		"01HZX7Q8Y1ABCDEF":      true,
		"req_123-abc":           true,
		"":                      false,
		"has space":             false,
		"line\nbreak":           false,
		strings.Repeat("a", 65): false,
	} {
		if got := validRequestID(id); got != want {
			t.Errorf("validRequestID(%q) = %v, want %v", id, got, want)
		}
	}
}
