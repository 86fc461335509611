package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionTokenSecret = "SESSION_TOKEN_SECRET"

var (
	ErrMissingToken   = errors.New("missing session token")
	ErrInvalidToken   = errors.New("invalid session token")
	ErrSecretNotSet   = errors.New("session token secret not configured")
	ErrMissingSession = errors.New("token carries no session id")
)

// SessionClaims names the session a browser is driving. It carries no user
// identity and grants nothing beyond access to that one session.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrSecretNotSet
	}
	return &Signer{secret: []byte(secret)}, nil
}

func NewSignerFromEnv() (*Signer, error) {
	return NewSigner(os.Getenv(SessionTokenSecret))
}

func (s *Signer) Sign(sessionID string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

func (s *Signer) Verify(raw string) (*SessionClaims, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" {
		return nil, ErrMissingSession
	}

	return &claims, nil
}

// TokenFromRequest reads a bearer token from the Authorization header, falling
// back to the token query parameter used by WebSocket upgrades.
func TokenFromRequest(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", ErrInvalidToken
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return "", ErrMissingToken
		}
		return token, nil
	}

	if token := c.Query("token"); token != "" {
		return token, nil
	}

	return "", ErrMissingToken
}
