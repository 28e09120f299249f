// Package gemini generates portfolio narratives with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Backend is one candidate model able to turn a prompt into text
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelClient is the part of genai.Models used by GeminiBackend
type ModelClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiBackend calls a single Gemini model
type GeminiBackend struct {
	models ModelClient
	model  string
}

// NewGeminiBackend creates a backend for model
func NewGeminiBackend(models ModelClient, model string) *GeminiBackend {
	return &GeminiBackend{models: models, model: model}
}

// NewGeminiBackends connects to the Gemini API and returns one backend per
// model, in the given order.
func NewGeminiBackends(ctx context.Context, apiKey string, models []string) ([]Backend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	backends := make([]Backend, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			backends = append(backends, NewGeminiBackend(client.Models, m))
		}
	}
	return backends, nil
}

// Name returns the model name
func (b *GeminiBackend) Name() string {
	return b.model
}

// Generate sends prompt to the model and returns the response text
func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("model %s returned an empty response", b.model)
	}
	return text, nil
}

// IsQuotaError reports whether err is an HTTP 429 / RESOURCE_EXHAUSTED
// answer from the API.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr != nil && (apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	// APIError values (not pointers) still carry the code in their text
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
