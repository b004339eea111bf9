package llms

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"context"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/errors"
	"github.com/evolune/funsearch-go/pkg/llms/openai"
	"github.com/evolune/funsearch-go/pkg/logging"
)

// DeepInfraLLM calls DeepInfra's OpenAI-compatible chat completions endpoint.
// It implements core.Generator.
type DeepInfraLLM struct {
	model      string
	baseURL    string
	path       string
	headers    map[string]string
	httpClient *http.Client
}

// DeepInfraOption is a functional option for configuring the DeepInfra client.
type DeepInfraOption func(*deepInfraConfig)

type deepInfraConfig struct {
	baseURL    string
	path       string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) DeepInfraOption {
	return func(c *deepInfraConfig) { c.apiKey = apiKey }
}

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) DeepInfraOption {
	return func(c *deepInfraConfig) { c.baseURL = baseURL }
}

// WithPath sets the endpoint path.
func WithPath(path string) DeepInfraOption {
	return func(c *deepInfraConfig) { c.path = path }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) DeepInfraOption {
	return func(c *deepInfraConfig) { c.timeout = timeout }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) DeepInfraOption {
	return func(c *deepInfraConfig) { c.httpClient = client }
}

// NewDeepInfraLLM creates a DeepInfra client for the given model ID.
func NewDeepInfraLLM(model string, opts ...DeepInfraOption) (*DeepInfraLLM, error) {
	config := &deepInfraConfig{
		baseURL: "https://api.deepinfra.com",
		path:    "/v1/openai/chat/completions",
		timeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.apiKey == "" {
		config.apiKey = os.Getenv("DEEPINFRA_API_KEY")
	}
	if config.apiKey == "" {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "DeepInfra API key is required"),
			errors.Fields{"env_var": "DEEPINFRA_API_KEY"})
	}
	if model == "" {
		return nil, errors.New(errors.InvalidInput, "model ID is required")
	}

	httpClient := config.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.timeout}
	}

	return &DeepInfraLLM{
		model:   model,
		baseURL: config.baseURL,
		path:    config.path,
		headers: map[string]string{
			"Authorization": "Bearer " + config.apiKey,
			"Content-Type":  "application/json",
		},
		httpClient: httpClient,
	}, nil
}

// ModelID returns the model this client generates with.
func (d *DeepInfraLLM) ModelID() string {
	return d.model
}

// Generate implements core.Generator.
func (d *DeepInfraLLM) Generate(ctx context.Context, prompt string, options ...core.GenerateOption) (string, error) {
	logger := logging.GetLogger()
	opts := core.NewGenerateOptions()
	for _, opt := range options {
		opt(opts)
	}

	request := &openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:   &opts.MaxTokens,
		Temperature: &opts.Temperature,
	}
	if opts.TopP > 0 {
		request.TopP = &opts.TopP
	}
	if len(opts.Stop) > 0 {
		request.Stop = opts.Stop
	}

	ctx = logging.WithModelID(ctx, d.model)

	response, err := d.makeRequest(ctx, request)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", errors.New(errors.InvalidResponse, "no choices returned from DeepInfra API")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	logger.Debug(ctx, "DeepInfra response: %d total tokens, finish_reason=%s",
		response.Usage.TotalTokens, response.Choices[0].FinishReason)

	return content, nil
}

func (d *DeepInfraLLM) makeRequest(ctx context.Context, request *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to marshal request")
	}

	url := d.baseURL + d.path

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, errors.Unknown, "failed to create request")
	}

	for key, value := range d.headers {
		req.Header.Set(key, value)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.LLMGenerationFailed, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp openai.ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, errors.WithFields(
				errors.New(errors.LLMGenerationFailed, "API request failed"),
				errors.Fields{"status": resp.StatusCode, "body": string(body)})
		}
		return nil, errors.WithFields(
			errors.New(errors.LLMGenerationFailed, errorResp.Error.Message),
			errors.Fields{"type": errorResp.Error.Type, "code": errorResp.Error.Code})
	}

	var response openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "failed to parse response")
	}

	return &response, nil
}
