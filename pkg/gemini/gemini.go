package gemini

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModelName = "gemini-1.5-flash"

	extractTextPrompt = "Transcribe all text visible in this screenshot exactly as written. " +
		"Reply with the text only. If the image contains no text, reply with an empty message."
)

type IGemini interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
	Close()
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

func NewGeminiClient(ctx context.Context) (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	return NewGeminiClientWithOptions(ctx, os.Getenv("GEMINI_MODEL_NAME"), option.WithAPIKey(apiKey))
}

func NewGeminiClientWithOptions(ctx context.Context, modelName string, opts ...option.ClientOption) (IGemini, error) {
	if modelName == "" {
		modelName = defaultModelName
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) ExtractText(ctx context.Context, image []byte, contentType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("image is empty")
	}

	format := strings.TrimPrefix(contentType, "image/")
	if format == "" || format == contentType {
		format = "png"
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0)

	res, err := model.GenerateContent(ctx, genai.Text(extractTextPrompt), genai.ImageData(format, image))
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
