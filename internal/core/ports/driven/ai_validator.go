package driven

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// AIConfigValidator checks provider settings against the live provider.
// Errors wrap domain.ErrEmbeddingUnavailable or domain.ErrLLMUnavailable.
type AIConfigValidator interface {
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
