package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultChatModel = "gpt-4o-mini"

	summaryTemperature = 0.3
	summaryMaxTokens   = 250
)

var ErrNoChoices = errors.New("no response from chat completion")

type ISummarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

type chatGPTService struct {
	client *openai.Client
	model  string
}

func NewSummarizer() (ISummarizer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return NewSummarizerWithConfig(cfg, os.Getenv("OPENAI_CHAT_MODEL")), nil
}

func NewSummarizerWithConfig(cfg openai.ClientConfig, model string) ISummarizer {
	if model == "" {
		model = DefaultChatModel
	}

	return &chatGPTService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Summarize sends a single user message with fixed sampling parameters and
// returns the trimmed first choice. There is no retry.
func (c *chatGPTService) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: summaryTemperature,
			MaxTokens:   summaryMaxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
