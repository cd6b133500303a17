package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLLMService(Config{BaseURL: srv.URL, Model: "llama3.1", ContextWindow: 8192})
}

var userQ = []driven.ChatMessage{{Role: driven.RoleUser, Content: "q"}}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(Config{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Zero(t, svc.contextWindow)
}

func TestChat_SendsZeroTemperatureAndContextWindow(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" بله \n"},"done":true}`))
	})

	out, err := svc.Chat(context.Background(), userQ, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "بله", out)

	opts, ok := got["options"].(map[string]any)
	require.True(t, ok, "options must always be sent")
	temp, ok := opts["temperature"]
	require.True(t, ok, "temperature must be sent even when zero")
	assert.Equal(t, 0.0, temp)
	assert.Equal(t, 8192.0, opts["num_ctx"])
	assert.Equal(t, false, got["stream"])
}

func TestGenerate_SendsPromptAsUserMessage(t *testing.T) {
	var got chatRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"خلاصه"}}`))
	})

	out, err := svc.Generate(context.Background(), "summarise", driven.GenerateOptions{
		Temperature: 0.1, MaxTokens: 256, StopWords: []string{"###"},
	})

	require.NoError(t, err)
	assert.Equal(t, "خلاصه", out)
	assert.Equal(t, []chatMessage{{Role: "user", Content: "summarise"}}, got.Messages)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
	assert.Equal(t, 256, got.Options.NumPredict)
	assert.Equal(t, []string{"###"}, got.Options.Stop)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
	}{
		{"missing model", http.StatusNotFound, `{"error":"model \"llama3.1\" not found"}`, true},
		{"server error", http.StatusInternalServerError, `{"error":"out of memory"}`, true},
		{"bad request", http.StatusBadRequest, `{"error":"invalid role"}`, false},
		{"empty completion", http.StatusOK, `{"message":{"role":"assistant","content":"  "}}`, false},
		{"inline error", http.StatusOK, `{"error":"context overflow"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := svc.Chat(context.Background(), userQ, driven.ChatOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.unavailable, domain.IsRetryable(err))
		})
	}
}

func TestChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLLMService(Config{BaseURL: url}).Chat(context.Background(), userQ, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing(t *testing.T) {
	ok := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/show", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})
	assert.NoError(t, ok.Ping(context.Background()))

	missing := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := missing.Ping(context.Background())
	require.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "ollama pull llama3.1")
}
