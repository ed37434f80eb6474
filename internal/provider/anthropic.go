package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/alkime/sonaris/internal/prompt"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

type messageCompleter struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropic returns a backend on the Anthropic Messages API. An empty
// baseURL uses the SDK default.
func NewAnthropic(apiKey, baseURL, model string) (*Backend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, missingCredential("anthropic")
	}

	if model == "" {
		model = DefaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return newBackend("anthropic", &messageCompleter{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}, prompt.KeywordsRange), nil
}

func (c *messageCompleter) complete(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", classify("anthropic", apiErr.StatusCode, err)
		}

		return "", classify("anthropic", 0, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(textBlock.Text)
		}
	}

	return out.String(), nil
}
