package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// ollamaServer answers the model lookup both Ollama adapters ping with.
func ollamaServer(t *testing.T, status int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/show" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestServices_Close_NilSafe(t *testing.T) {
	(&Services{}).Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
	}{
		{name: "nil settings", settings: nil, wantErr: true},
		{name: "unconfigured settings", settings: &domain.EmbeddingSettings{}, wantErr: true},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "bge-m3"},
		},
		{
			name:     "openai",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small"},
		},
		{
			name:        "anthropic has no embeddings",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"},
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	for _, p := range domain.AllLLMProviders() {
		t.Run(string(p), func(t *testing.T) {
			svc, err := CreateLLMService(&domain.LLMSettings{Provider: p, APIKey: "k"})
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, domain.DefaultLLMModels()[p], svc.ModelName())
		})
	}

	_, err := CreateLLMService(nil)
	assert.Error(t, err)
}

func TestCreateOllamaEmbedding_Dimensions(t *testing.T) {
	svc := createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "bge-m3"})
	assert.Equal(t, 1024, svc.Dimensions())

	svc = createOllamaEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "custom-model"})
	assert.Equal(t, 1024, svc.Dimensions())
	assert.Equal(t, "custom-model", svc.ModelName())
}

func TestInit_RequiresBothProviders(t *testing.T) {
	ctx := context.Background()
	okEmb := domain.EmbeddingSettings{Provider: domain.AIProviderOllama}
	okLLM := domain.LLMSettings{Provider: domain.AIProviderOllama}

	_, err := Init(ctx, domain.EmbeddingSettings{}, okLLM, false)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = Init(ctx, okEmb, domain.LLMSettings{Provider: domain.AIProviderOpenAI}, false)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svcs, err := Init(ctx, okEmb, okLLM, false)
	require.NoError(t, err)
	assert.NotNil(t, svcs.Embedding)
	assert.NotNil(t, svcs.LLM)
	svcs.Close()
}

func TestInit_PingsProviders(t *testing.T) {
	ctx := context.Background()
	up := ollamaServer(t, http.StatusOK)
	down := ollamaServer(t, http.StatusServiceUnavailable)

	svcs, err := Init(ctx,
		domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: up},
		domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up},
		true)
	require.NoError(t, err)
	svcs.Close()

	_, err = Init(ctx,
		domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: down},
		domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up},
		true)
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.True(t, domain.IsRetryable(err))
	assert.Contains(t, err.Error(), "skillbot doctor")

	_, err = Init(ctx,
		domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: up},
		domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: down},
		true)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
