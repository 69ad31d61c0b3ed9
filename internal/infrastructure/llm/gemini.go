package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"CampusFeed/internal/config"
	"CampusFeed/internal/ports"
)

// GeminiClient implements ports.Completer on top of the Gemini SDK.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
}

var _ ports.Completer = (*GeminiClient)(nil)

// NewGeminiClient dials the Gemini API with an API key.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	if cfg.Temperature > 0 {
		model.SetTemperature(cfg.Temperature)
	}

	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

// Complete sends one prompt and concatenates the text parts of the first candidate.
func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.model == nil {
		return "", fmt.Errorf("gemini client is nil")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}

	return "", fmt.Errorf("gemini returned no text candidates")
}

// Close releases the underlying gRPC connection.
func (g *GeminiClient) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
