package retell

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
	DefaultBaseURL = "https://api.retellai.com"

	StatusRegistered = "registered"
	StatusOngoing    = "ongoing"
	StatusEnded      = "ended"
	StatusError      = "error"
)

var (
	ErrMissingAPIKey     = errors.New("retell API key is required")
	ErrMissingFromNumber = errors.New("retell from number is required")
	ErrMissingCallID     = errors.New("retell response carries no call id")
)

// APIError is a non-2xx answer from the voice platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("retell api error: status=%d body=%s", e.StatusCode, e.Body)
}

type CreatePhoneCallRequest struct {
	FromNumber      string            `json:"from_number"`
	ToNumber        string            `json:"to_number"`
	OverrideAgentID string            `json:"override_agent_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type CallAnalysis struct {
	CallSummary string `json:"call_summary"`
}

type Call struct {
	CallID       string        `json:"call_id"`
	CallStatus   string        `json:"call_status"`
	CallAnalysis *CallAnalysis `json:"call_analysis,omitempty"`
}

// Summary is the post-call analysis text, empty until the platform has
// produced it.
func (c *Call) Summary() string {
	if c == nil || c.CallAnalysis == nil {
		return ""
	}
	return strings.TrimSpace(c.CallAnalysis.CallSummary)
}

type IRetell interface {
	CreatePhoneCall(ctx context.Context, req CreatePhoneCallRequest) (*Call, error)
	GetCall(ctx context.Context, callID string) (*Call, error)
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromNumber string
	AgentID    string
	Timeout    time.Duration
}

type retellClient struct {
	cfg        Config
	httpClient *http.Client
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     os.Getenv("RETELL_API_KEY"),
		BaseURL:    os.Getenv("RETELL_BASE_URL"),
		FromNumber: os.Getenv("RETELL_FROM_NUMBER"),
		AgentID:    os.Getenv("RETELL_AGENT_ID"),
	}
}

func New(cfg Config) (IRetell, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.FromNumber == "" {
		return nil, ErrMissingFromNumber
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &retellClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// CreatePhoneCall places an outbound call. The configured caller number and
// agent are used when the request leaves them empty.
func (r *retellClient) CreatePhoneCall(ctx context.Context, req CreatePhoneCallRequest) (*Call, error) {
	if req.FromNumber == "" {
		req.FromNumber = r.cfg.FromNumber
	}
	if req.OverrideAgentID == "" {
		req.OverrideAgentID = r.cfg.AgentID
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint("/v2/create-phone-call"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var call Call
	if err := r.do(httpReq, &call); err != nil {
		return nil, err
	}
	if call.CallID == "" {
		return nil, ErrMissingCallID
	}

	return &call, nil
}

func (r *retellClient) GetCall(ctx context.Context, callID string) (*Call, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint("/v2/get-call/"+url.PathEscape(callID)), nil)
	if err != nil {
		return nil, err
	}

	var call Call
	if err := r.do(httpReq, &call); err != nil {
		return nil, err
	}

	return &call, nil
}

func (r *retellClient) endpoint(path string) string {
	return strings.TrimRight(r.cfg.BaseURL, "/") + path
}

func (r *retellClient) do(req *http.Request, target interface{}) error {
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode retell response: %w", err)
	}

	return nil
}
