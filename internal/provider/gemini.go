package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/alkime/sonaris/internal/prompt"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

type geminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGemini returns a backend on the Gemini API. An empty baseURL uses the
// SDK default.
func NewGemini(ctx context.Context, apiKey, baseURL, model string) (*Backend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, missingCredential("gemini")
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newBackend("gemini", &geminiCompleter{client: client, model: model}, prompt.KeywordsRange), nil
}

func (c *geminiCompleter) complete(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return "", classify("gemini", geminiStatus(err), err)
	}

	return resp.Text(), nil
}

// geminiStatus extracts the HTTP status from a genai error. Gemini reports an
// invalid key as 400 with reason API_KEY_INVALID, which is treated as 401.
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return 0
		}
		apiErr = *ptr
	}

	if apiErr.Code == http.StatusBadRequest {
		for _, detail := range apiErr.Details {
			if reason, _ := detail["reason"].(string); reason == "API_KEY_INVALID" {
				return http.StatusUnauthorized
			}
		}
	}

	return apiErr.Code
}
