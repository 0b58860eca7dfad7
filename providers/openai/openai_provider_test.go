package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josehu07/codetective/providers/models"
	"github.com/josehu07/codetective/token_management"
	"github.com/josehu07/codetective/utils"
)

// Test key validation hits the model info endpoint with the bearer header
func TestOpenAIProvider_ValidateApiKey(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/gpt-4o", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-good", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "gpt-4o", "object": "model"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	provider := NewOpenAIDetectionProvider(&OpenAIConfig{
		BaseURL: server.URL,
		ApiKey:  "sk-good",
	})
	require.NoError(t, provider.ValidateApiKey(context.Background()))
}

// Test a non-200 validation response is a Status error
func TestOpenAIProvider_ValidateApiKeyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid key"}}`))
	}))
	defer server.Close()

	provider := NewOpenAIDetectionProvider(&OpenAIConfig{
		BaseURL: server.URL,
		ApiKey:  "sk-bad",
	})
	err := provider.ValidateApiKey(context.Background())
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrStatus))
}

// Test a detection call round-trips the chat completion shape and reports
// token usage
func TestOpenAIProvider_DetectAICode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant",
				"content": "{\"likelihood\": 64, \"reasoning\": \"boilerplate heavy\"}"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30}
		}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := token_management.NewTokenManager()
	provider := NewOpenAIDetectionProvider(&OpenAIConfig{
		BaseURL:         server.URL,
		ApiKey:          "sk-good",
		TokenManagement: tokens,
	})

	result, err := provider.DetectAICode(context.Background(), "func main() {}")
	require.NoError(t, err)
	assert.Equal(t, uint8(64), result.Likelihood)
	assert.Equal(t, "boilerplate heavy", result.Reasoning)

	total, input, output := tokens.GetCurrentTokenUsage()
	assert.Equal(t, 150, total)
	assert.Equal(t, 120, input)
	assert.Equal(t, 30, output)
}

// Test provider error bodies surface in the Status error message
func TestOpenAIProvider_DetectAICodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit reached"}}`))
	}))
	defer server.Close()

	provider := NewOpenAIDetectionProvider(&OpenAIConfig{
		BaseURL: server.URL,
		ApiKey:  "sk-good",
	})
	_, err := provider.DetectAICode(context.Background(), "code")
	require.Error(t, err)
	assert.True(t, utils.ErrorIsKind(err, utils.ErrStatus))
	assert.Contains(t, err.Error(), "rate limit reached")
}
