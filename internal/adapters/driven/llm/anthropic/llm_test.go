package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

func TestNewCompletionService_RequiresAPIKey(t *testing.T) {
	_, err := NewCompletionService(Config{})

	assert.Error(t, err)
}

func TestComplete_SendsMessagesRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.System, "[Source: https://example.com/a]")
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "What is this about?", req.Messages[0].Content)
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"A grounded answer."}]}`))
	}))
	defer server.Close()

	svc, err := NewCompletionService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	answer, err := svc.Complete(context.Background(),
		"What is this about?",
		"[Source: https://example.com/a]\nSome passage.",
		driven.CompleteOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A grounded answer.", answer)
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"max_tokens required","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	svc, err := NewCompletionService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "q", "ctx", driven.CompleteOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens required")
}

func TestComplete_NoTextBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	svc, err := NewCompletionService(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), "q", "ctx", driven.CompleteOptions{})

	assert.Error(t, err)
}
