package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	StatusCallEnded    = "call_ended"
	StatusCallAnalyzed = "call_analyzed"
)

var (
	ErrRegistrationRejected = errors.New("backend rejected the registration")
	ErrBackendUnavailable   = errors.New("backend is unreachable")
	ErrStatusUnavailable    = errors.New("call status endpoint returned an error")
	ErrMissingBaseURL       = errors.New("backend url is required")
)

// RegisterUserRequest is the registration payload. Context is sent as JSON
// null when no evidence summary was produced.
type RegisterUserRequest struct {
	Username string  `json:"username"`
	Address  string  `json:"address"`
	Contact  string  `json:"contact"`
	Context  *string `json:"context"`
}

type registerUserResponse struct {
	Data struct {
		UserID json.RawMessage `json:"user_id"`
	} `json:"data"`
}

type callStatusResponse struct {
	Status string `json:"status"`
}

type IBackend interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (string, error)
	GetCallStatus(ctx context.Context, callID string) (string, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func NewFromEnv() (IBackend, error) {
	return New(os.Getenv("BACKEND_URL"), 20*time.Second)
}

func New(baseURL string, timeout time.Duration) (IBackend, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// RegisterUser returns the identifier the backend assigned. Any answer other
// than 200 with a non-empty user_id wraps ErrRegistrationRejected; transport
// failures wrap ErrBackendUnavailable.
func (c *client) RegisterUser(ctx context.Context, req RegisterUserRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrBackendUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status=%d", ErrRegistrationRejected, resp.StatusCode)
	}

	var parsed registerUserResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrRegistrationRejected, err)
	}

	userID := rawIdentifier(parsed.Data.UserID)
	if userID == "" {
		return "", fmt.Errorf("%w: empty user_id", ErrRegistrationRejected)
	}

	return userID, nil
}

func (c *client) GetCallStatus(ctx context.Context, callID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/call_status/"+url.PathEscape(callID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status=%d", ErrStatusUnavailable, resp.StatusCode)
	}

	var parsed callStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", ErrStatusUnavailable, err)
	}

	return parsed.Status, nil
}

// IsTerminal reports whether a call-status value means the call is over.
func IsTerminal(status string) bool {
	return status == StatusCallEnded || status == StatusCallAnalyzed
}

// rawIdentifier accepts the user id as a JSON string or number.
func rawIdentifier(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}
