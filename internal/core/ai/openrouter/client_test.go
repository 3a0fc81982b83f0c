package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-assistant/internal/core/ai/provider"
	"recipe-assistant/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.OpenRouterConfig{
		BaseURL:     srv.URL,
		APIKey:      "sk-test",
		Model:       "test/model",
		MaxTokens:   800,
		Temperature: 0.4,
		Timeout:     5 * time.Second,
	})
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gen-1","model":"test/model","choices":[{"message":{"role":"assistant","content":"  hello  "}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	})

	resp, err := c.Generate(context.Background(), &provider.Request{
		Messages: []provider.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, "gen-1", resp.ID)
	assert.Equal(t, 4, resp.Usage.TotalTokens)

	// 未指定時套用設定值
	assert.Equal(t, "test/model", got.Model)
	assert.Equal(t, 800, got.MaxTokens)
	assert.InDelta(t, 0.4, got.Temperature, 1e-9)
	assert.Len(t, got.Messages, 1)
}

func TestGenerateAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{})
	assert.Error(t, err)
}

func TestClientDefaults(t *testing.T) {
	c := NewClient(config.OpenRouterConfig{Model: "m"})
	assert.Equal(t, "m", c.GetModel())
	assert.Equal(t, 60*time.Second, c.GetTimeout())
	assert.NoError(t, c.Close())
}
