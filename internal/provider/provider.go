// Package provider adapts generative-text backends to the chord and keyword
// capabilities used by the creation workflow.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/internal/normalize"
	"github.com/alkime/sonaris/internal/prompt"
)

// completer sends one prompt and returns the raw response text.
// A missing text field is returned as "".
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

// Backend is a configured generative backend.
type Backend struct {
	name   string
	client completer
	form   prompt.KeywordForm
	logger *slog.Logger
}

func newBackend(name string, client completer, form prompt.KeywordForm) *Backend {
	return &Backend{
		name:   name,
		client: client,
		form:   form,
		logger: slog.Default().With("provider", name),
	}
}

// Name returns the backend identifier, e.g. "gemini".
func (b *Backend) Name() string {
	return b.name
}

// ChordProgression asks the backend for a chord progression.
func (b *Backend) ChordProgression(ctx context.Context, key, style string) (string, error) {
	raw, err := b.client.complete(ctx, prompt.Progression(prompt.Request{Key: key, Style: style}))
	if err != nil {
		return "", fmt.Errorf("failed to generate chord progression: %w", err)
	}

	b.logger.Debug("chord progression received", "bytes", len(raw))

	return normalize.Progression(raw), nil
}

// Keywords asks the backend for lyric keywords.
func (b *Backend) Keywords(ctx context.Context, key, style string) ([]string, error) {
	raw, err := b.client.complete(ctx, prompt.Keywords(prompt.Request{Key: key, Style: style}, b.form))
	if err != nil {
		return nil, fmt.Errorf("failed to generate keywords: %w", err)
	}

	keywords := normalize.Keywords(raw)
	b.logger.Debug("keywords received", "count", len(keywords))

	return keywords, nil
}

// classify tags a backend error as ErrAuth for rejected credentials and
// ErrProvider otherwise.
func classify(name string, status int, err error) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %s rejected credential: %w", apperr.ErrAuth, name, err)
	}

	return fmt.Errorf("%w: %s request failed: %w", apperr.ErrProvider, name, err)
}

func missingCredential(name string) error {
	return fmt.Errorf("%w: %s credential is empty", apperr.ErrAuth, name)
}

// errNoChoices is returned by completers that receive no output at all.
var errNoChoices = errors.New("response contained no choices")
