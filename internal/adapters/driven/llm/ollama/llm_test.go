package ollama

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

func TestNewCompletionService_Defaults(t *testing.T) {
	svc := NewCompletionService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestComplete_SendsGenerateRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.System, "[Source: https://example.com/a]")
		assert.Equal(t, "What is this about?", req.Prompt)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"response":"A grounded answer.","done":true}`))
	}))
	defer server.Close()

	svc := NewCompletionService(Config{BaseURL: server.URL})

	answer, err := svc.Complete(context.Background(),
		"What is this about?",
		"[Source: https://example.com/a]\nSome passage.",
		driven.CompleteOptions{})
	require.NoError(t, err)

	assert.Equal(t, "A grounded answer.", answer)
}

func TestComplete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`model "llama3.2" not found`))
	}))
	defer server.Close()

	svc := NewCompletionService(Config{BaseURL: server.URL})

	_, err := svc.Complete(context.Background(), "q", "ctx", driven.CompleteOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
