package provider

import (
	"context"
	"strings"

	"github.com/alkime/sonaris/internal/prompt"
	ollamasdk "github.com/rozoomcool/go-ollama-sdk"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.1"

type ollamaCompleter struct {
	client *ollamasdk.OllamaClient
	model  string
}

// NewOllama returns a backend on a local Ollama server at baseURL.
func NewOllama(baseURL, model string) (*Backend, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, missingCredential("ollama")
	}

	if model == "" {
		model = DefaultOllamaModel
	}

	return newBackend("ollama", &ollamaCompleter{
		client: ollamasdk.NewClient(strings.TrimRight(baseURL, "/")),
		model:  model,
	}, prompt.KeywordsOneWord), nil
}

// complete does not observe ctx; the SDK call has no context parameter.
func (c *ollamaCompleter) complete(_ context.Context, text string) (string, error) {
	out, err := c.client.Chat(c.model, []ollamasdk.ChatMessage{
		{Role: "user", Content: text},
	})
	if err != nil {
		return "", classify("ollama", 0, err)
	}

	return out, nil
}
