package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient serves completions from the Gemini API instead of a local
// inference server. The prompt is sent as a single user turn; Gemini models
// do not echo the prompt back.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName}, nil
}

var _ Provider = (*GeminiClient)(nil)

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := g.client.GenerativeModel(req.Model)

	temp := float32(req.Temperature)
	maxTokens := int32(req.MaxLength)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini response contained no text parts")
	}

	return responseText.String(), nil
}

// Ping fetches the model metadata; a successful lookup means the API key and
// model name are usable.
func (g *GeminiClient) Ping(ctx context.Context) error {
	if _, err := g.client.GenerativeModel(g.modelName).Info(ctx); err != nil {
		return fmt.Errorf("gemini model lookup failed: %w", err)
	}
	return nil
}
