// Package ai enriches merged audit reports with model-generated insights and
// remediation suggestions. Everything in this package is optional: audits
// complete without it, and callers treat its failures as degraded output
// rather than errors.
package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/halcyonworks/webaudit-cli/internal/config"
)

// GeminiClient implements schemas.LLMClient over the Gemini API.
type GeminiClient struct {
	client *genai.Client
	cfg    config.AIConfig
}

// NewGeminiClient creates a client for the configured model.
func NewGeminiClient(ctx context.Context, cfg config.AIConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

// Generate sends the prompt to the model and returns its text response.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: c.cfg.MaxOutputTokens,
		Temperature:     genai.Ptr[float32](0.2),
	}

	resp, err := c.client.Models.GenerateContent(genCtx, c.cfg.Model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return text, nil
}
