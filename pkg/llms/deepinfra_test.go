package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolune/funsearch-go/pkg/core"
	"github.com/evolune/funsearch-go/pkg/llms/openai"
)

func newTestDeepInfra(t *testing.T, handler http.HandlerFunc) *DeepInfraLLM {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	llm, err := NewDeepInfraLLM("meta-llama/Meta-Llama-3.1-8B-Instruct",
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithPath("/v1/openai/chat/completions"),
	)
	require.NoError(t, err)
	return llm
}

func TestDeepInfraGenerate(t *testing.T) {
	llm := newTestDeepInfra(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/openai/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "meta-llama/Meta-Llama-3.1-8B-Instruct", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[0].Content)
		require.NotNil(t, req.Temperature)
		assert.Equal(t, 0.9, *req.Temperature)

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "  world  "}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	text, err := llm.Generate(context.Background(), "hello", core.WithTemperature(0.9))
	require.NoError(t, err)
	assert.Equal(t, "world", text)
}

func TestDeepInfraGenerateAPIError(t *testing.T) {
	llm := newTestDeepInfra(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(openai.ErrorResponse{})
	})

	_, err := llm.Generate(context.Background(), "hello")
	assert.Error(t, err)
}

func TestDeepInfraGenerateNoChoices(t *testing.T) {
	llm := newTestDeepInfra(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})

	_, err := llm.Generate(context.Background(), "hello")
	assert.Error(t, err)
}

func TestNewDeepInfraLLMRequiresModel(t *testing.T) {
	_, err := NewDeepInfraLLM("", WithAPIKey("key"))
	assert.Error(t, err)
}

func TestNewDeepInfraLLMRequiresAPIKey(t *testing.T) {
	t.Setenv("DEEPINFRA_API_KEY", "")
	_, err := NewDeepInfraLLM("some-model")
	assert.Error(t, err)
}
