package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/alkime/sonaris/internal/prompt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultHuggingFaceBaseURL is the OpenAI-compatible Hugging Face router.
	DefaultHuggingFaceBaseURL = "https://router.huggingface.co/v1"
	// DefaultHuggingFaceModel is the router model id.
	DefaultHuggingFaceModel = "openai/gpt-oss-120b:groq"
)

type chatCompleter struct {
	name   string
	client openai.Client
	model  string
}

// NewHuggingFace returns a backend that talks to the Hugging Face router
// through its OpenAI-compatible chat completions API.
func NewHuggingFace(token, baseURL, model string) (*Backend, error) {
	if strings.TrimSpace(token) == "" {
		return nil, missingCredential("huggingface")
	}

	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}

	if model == "" {
		model = DefaultHuggingFaceModel
	}

	client := openai.NewClient(
		option.WithAPIKey(token),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)

	return newBackend("huggingface", &chatCompleter{name: "huggingface", client: client, model: model}, prompt.KeywordsOneWord), nil
}

func (c *chatCompleter) complete(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(text),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", classify(c.name, apiErr.StatusCode, err)
		}

		return "", classify(c.name, 0, err)
	}

	if len(resp.Choices) == 0 {
		return "", classify(c.name, 0, errNoChoices)
	}

	return resp.Choices[0].Message.Content, nil
}
