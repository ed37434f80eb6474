// Package credentials resolves provider tokens from the settings file and the
// system keychain.
package credentials

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSet is returned when no token is stored for a provider.
var ErrNotSet = errors.New("credential not set")

// Name identifies a provider credential.
type Name string

const (
	// HuggingFace is the Hugging Face router token.
	HuggingFace Name = "huggingface"
	// Gemini is the Google Gemini API key.
	Gemini Name = "gemini"
	// Anthropic is the Anthropic API key.
	Anthropic Name = "anthropic"
	// Ollama is the base URL of a local Ollama server.
	Ollama Name = "ollama"
)

// All returns every known credential for iteration.
func All() []Name {
	return []Name{HuggingFace, Gemini, Anthropic, Ollama}
}

// Field returns the settings.json field holding the credential.
func (n Name) Field() string {
	switch n {
	case HuggingFace:
		return "apiToken"
	case Gemini:
		return "geminiApiKey"
	case Anthropic:
		return "anthropicApiKey"
	case Ollama:
		return "ollamaBaseUrl"
	default:
		return string(n)
	}
}

// Parse maps a provider name (e.g. "gemini") to a Name.
func Parse(name string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range All() {
		if n == known {
			return n, nil
		}
	}

	return "", fmt.Errorf("unknown provider: %s", name)
}

// Source looks up a stored token. Missing tokens yield ErrNotSet.
type Source interface {
	Token(name Name) (string, error)
}

// Store is a Source that can also persist tokens.
type Store interface {
	Source
	Set(name Name, value string) error
}

// Chain consults each source in order and returns the first token found.
type Chain []Source

// Token implements Source.
func (c Chain) Token(name Name) (string, error) {
	var firstErr error

	for _, src := range c {
		token, err := src.Token(name)
		if err == nil {
			return token, nil
		}

		if !errors.Is(err, ErrNotSet) && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return "", firstErr
	}

	return "", fmt.Errorf("%s: %w", name, ErrNotSet)
}

// IsSet reports whether src holds a token for name.
func IsSet(src Source, name Name) bool {
	_, err := src.Token(name)

	return err == nil
}
