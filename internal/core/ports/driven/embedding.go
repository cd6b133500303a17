// Package driven declares the outbound ports the core depends on.
package driven

import "context"

// EmbeddingService turns text into vectors. Adapters exist for Ollama and
// OpenAI. Provider outages wrap domain.ErrEmbeddingUnavailable; bad replies
// wrap domain.ErrEmbedding.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order. One failure
	// fails the batch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the length of every vector this service returns.
	Dimensions() int
	ModelName() string

	// Ping checks credentials and model availability without embedding.
	Ping(ctx context.Context) error
	Close() error
}
