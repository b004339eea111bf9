package llms

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/evolune/funsearch-go/pkg/core"
	errs "github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/logging"
)

// AnthropicLLM implements core.Generator against Anthropic's Messages API.
// The creativity judging panel uses it for the model that is not reachable
// through an OpenAI-compatible endpoint.
type AnthropicLLM struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicLLM creates a new AnthropicLLM instance.
func NewAnthropicLLM(apiKey string, model anthropic.Model) (*AnthropicLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.WithFields(
			errs.New(errs.InvalidInput, "Anthropic API key is required"),
			errs.Fields{"env_var": "ANTHROPIC_API_KEY"})
	}
	if model == "" {
		return nil, errs.New(errs.InvalidInput, "model ID is required")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicLLM{
		client: &client,
		model:  model,
	}, nil
}

// ModelID returns the model this client generates with.
func (a *AnthropicLLM) ModelID() string {
	return string(a.model)
}

// Generate implements core.Generator.
func (a *AnthropicLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (string, error) {
	logger := logging.GetLogger()
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	ctx = logging.WithModelID(ctx, string(a.model))

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: a.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: anthropic.Float(opts.Temperature),
	})

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			logger.Error(ctx, "Anthropic API error: status code %d", apiErr.StatusCode)
		}
		return "", errs.WithFields(
			errs.Wrap(err, errs.LLMGenerationFailed, "failed to generate response"),
			errs.Fields{
				"model":      string(a.model),
				"max_tokens": opts.MaxTokens,
			})
	}

	if message == nil || len(message.Content) == 0 {
		return "", errs.New(errs.LLMGenerationFailed, "received empty content from Anthropic API")
	}

	var responseText string
	if block := message.Content[0]; block.Type == "text" {
		responseText = block.Text
	}

	logger.Debug(ctx, "Anthropic response: %d prompt tokens, %d completion tokens",
		message.Usage.InputTokens, message.Usage.OutputTokens)

	return strings.TrimSpace(responseText), nil
}
