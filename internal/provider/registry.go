package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/internal/credentials"
)

// Settings carries per-backend endpoint and model overrides. Empty fields fall
// back to each backend's default.
type Settings struct {
	Order          []string
	HFBaseURL      string
	HFModel        string
	GeminiModel    string
	AnthropicModel string
	OllamaModel    string
}

// DefaultOrder is the preference order used when Settings.Order is empty.
var DefaultOrder = []string{"huggingface", "gemini", "anthropic", "ollama"}

// Registry builds backends from stored credentials.
type Registry struct {
	settings Settings
	logger   *slog.Logger
}

// NewRegistry creates a registry.
func NewRegistry(settings Settings, logger *slog.Logger) *Registry {
	if len(settings.Order) == 0 {
		settings.Order = DefaultOrder
	}

	return &Registry{settings: settings, logger: logger}
}

// Order returns the configured preference order.
func (r *Registry) Order() []string {
	return append([]string(nil), r.settings.Order...)
}

// Select returns the first backend in preference order whose credential is
// present in src.
func (r *Registry) Select(ctx context.Context, src credentials.Source) (*Backend, error) {
	for _, raw := range r.settings.Order {
		name, err := credentials.Parse(raw)
		if err != nil {
			r.logger.Warn("Skipping unknown provider in order", "provider", raw)

			continue
		}

		token, err := src.Token(name)
		if err != nil {
			if !errors.Is(err, credentials.ErrNotSet) {
				r.logger.Warn("Credential lookup failed", "provider", name, "error", err)
			}

			continue
		}

		r.logger.Debug("Selected provider", "provider", name)

		return r.build(ctx, name, token)
	}

	return nil, fmt.Errorf("%w: no provider credential configured (tried %s)",
		apperr.ErrAuth, strings.Join(r.settings.Order, ", "))
}

// Get builds the named backend regardless of preference order.
func (r *Registry) Get(ctx context.Context, src credentials.Source, provider string) (*Backend, error) {
	name, err := credentials.Parse(provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrState, err)
	}

	token, err := src.Token(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s credential unavailable: %w", apperr.ErrAuth, name, err)
	}

	return r.build(ctx, name, token)
}

func (r *Registry) build(ctx context.Context, name credentials.Name, token string) (*Backend, error) {
	switch name {
	case credentials.HuggingFace:
		return NewHuggingFace(token, r.settings.HFBaseURL, r.settings.HFModel)
	case credentials.Gemini:
		return NewGemini(ctx, token, "", r.settings.GeminiModel)
	case credentials.Anthropic:
		return NewAnthropic(token, "", r.settings.AnthropicModel)
	case credentials.Ollama:
		return NewOllama(token, r.settings.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
