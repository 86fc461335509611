package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyRecording = errors.New("recording is empty")

type ITranscriber interface {
	Transcribe(ctx context.Context, fileName string, data []byte) (string, error)
}

type TranscriptionService struct {
	client *openai.Client
	model  string
}

// NewTranscriptionService reads OPENAI_API_KEY, OPENAI_BASE_URL and
// OPENAI_TRANSCRIPTION_MODEL.
func NewTranscriptionService() (*TranscriptionService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return NewTranscriptionServiceWithConfig(cfg, os.Getenv("OPENAI_TRANSCRIPTION_MODEL")), nil
}

func NewTranscriptionServiceWithConfig(cfg openai.ClientConfig, model string) *TranscriptionService {
	if model == "" {
		model = openai.Whisper1
	}
	return &TranscriptionService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Transcribe sends the recording in memory. The file name only carries the
// extension the API uses to detect the audio format.
func (t *TranscriptionService) Transcribe(ctx context.Context, fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyRecording
	}
	if fileName == "" {
		fileName = "recording.mp3"
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: fileName,
		Reader:   bytes.NewReader(data),
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
