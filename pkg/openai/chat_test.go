package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestSummarizeSendsFixedParameters(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Courier scam asking for customs fee.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	s := NewSummarizerWithConfig(cfg, "")

	summary, err := s.Summarize(context.Background(), "summarize this")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "Courier scam asking for customs fee." {
		t.Fatalf("unexpected summary %q", summary)
	}
	if got.Model != DefaultChatModel {
		t.Fatalf("expected model %s, got %s", DefaultChatModel, got.Model)
	}
	if got.Temperature != summaryTemperature || got.MaxTokens != summaryMaxTokens {
		t.Fatalf("unexpected sampling parameters: temperature=%v max_tokens=%d", got.Temperature, got.MaxTokens)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "summarize this" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestSummarizeWithoutChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL

	if _, err := NewSummarizerWithConfig(cfg, "gpt-4o").Summarize(context.Background(), "p"); err != ErrNoChoices {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
}
