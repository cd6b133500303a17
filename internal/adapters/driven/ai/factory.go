// Package ai builds embedding and LLM adapters from provider settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/skillbot/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/skillbot/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/skillbot/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/skillbot/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/skillbot/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

const pingTimeout = 5 * time.Second

// configHint ends every provider error so users know where to look.
const configHint = "check the [embedding] and [llm] sections of config.toml or run 'skillbot doctor'"

var errNotConfigured = errors.New("provider not configured")

// Services is the pair of AI backends the chat pipeline needs.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
}

// Close closes whichever services are set.
func (s *Services) Close() {
	if s.Embedding != nil {
		_ = s.Embedding.Close()
	}
	if s.LLM != nil {
		_ = s.LLM.Close()
	}
}

// Init builds both services. Both are required: retrieval needs embeddings
// and answers need an LLM. With ping set each is contacted first; without
// it, commands that never call a provider start offline.
func Init(ctx context.Context, embedding domain.EmbeddingSettings, llm domain.LLMSettings, ping bool) (*Services, error) {
	if !embedding.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured; %s",
			domain.ErrEmbeddingUnavailable, embedding.Provider, configHint)
	}
	if !llm.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured; %s",
			domain.ErrLLMUnavailable, llm.Provider, configHint)
	}

	buildEmb, buildLLM := CreateAndValidateEmbeddingService, CreateAndValidateLLMService
	if !ping {
		buildEmb = func(_ context.Context, s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
			return wrap(CreateEmbeddingService(s))(domain.ErrEmbeddingUnavailable)
		}
		buildLLM = func(_ context.Context, s *domain.LLMSettings) (driven.LLMService, error) {
			return wrap(CreateLLMService(s))(domain.ErrLLMUnavailable)
		}
	}

	emb, err := buildEmb(ctx, &embedding)
	if err != nil {
		return nil, err
	}
	gen, err := buildLLM(ctx, &llm)
	if err != nil {
		_ = emb.Close()
		return nil, err
	}
	logger.Info("ai: embeddings %s/%s, llm %s/%s", embedding.Provider, emb.ModelName(), llm.Provider, gen.ModelName())
	return &Services{Embedding: emb, LLM: gen}, nil
}

// wrap tags a construction error with sentinel.
func wrap[T any](svc T, err error) func(sentinel error) (T, error) {
	return func(sentinel error) (T, error) {
		if err != nil {
			var zero T
			return zero, fmt.Errorf("%w: %w", sentinel, err)
		}
		return svc, nil
	}
}

// service is what both adapter kinds share for validation.
type service interface {
	Ping(ctx context.Context) error
	Close() error
}

// pinged builds a service and pings it. Every failure wraps sentinel and
// ends with configHint.
func pinged[T service](ctx context.Context, provider domain.AIProvider, configured bool,
	build func() (T, error), sentinel error) (T, error) {
	var zero T
	if !configured {
		return zero, fmt.Errorf("%w: not configured; %s", sentinel, configHint)
	}
	svc, err := build()
	if err != nil {
		return zero, fmt.Errorf("%w: %w; %s", sentinel, err, configHint)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return zero, fmt.Errorf("%w: %s unreachable (%w); %s", sentinel, provider, err, configHint)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService builds the embedding service and pings it.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		settings = &domain.EmbeddingSettings{}
	}
	return pinged(ctx, settings.Provider, settings.IsConfigured(),
		func() (driven.EmbeddingService, error) { return CreateEmbeddingService(settings) },
		domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService builds the LLM service and pings it.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		settings = &domain.LLMSettings{}
	}
	return pinged(ctx, settings.Provider, settings.IsConfigured(),
		func() (driven.LLMService, error) { return CreateLLMService(settings) },
		domain.ErrLLMUnavailable)
}

// CreateEmbeddingService picks the adapter for settings.Provider.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, errNotConfigured
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return nil, errors.New("anthropic does not support embeddings, use ollama or openai")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService picks the adapter for settings.Provider.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, errNotConfigured
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{BaseURL: settings.BaseURL, Model: settings.Model}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	// Unknown models get zero here, which lets the adapter accept any size.
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
