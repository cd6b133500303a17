package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Indexer embeds chunks and persists them as a vector index.
// A build either writes a complete index or nothing.
type Indexer struct {
	embedding driven.EmbeddingService
	store     driven.VectorIndexStore
	batchSize int
	limiter   *rate.Limiter
}

// NewIndexer creates a new indexer. A zero RequestsPerSecond disables
// rate limiting between embedding batches.
func NewIndexer(embedding driven.EmbeddingService, store driven.VectorIndexStore, settings domain.IndexSettings) *Indexer {
	batchSize := settings.BatchSize
	if batchSize < 1 {
		batchSize = domain.DefaultAppSettings().Index.BatchSize
	}

	var limiter *rate.Limiter
	if settings.RequestsPerSecond > 0 {
		burst := settings.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}

	return &Indexer{
		embedding: embedding,
		store:     store,
		batchSize: batchSize,
		limiter:   limiter,
	}
}

// Build embeds the normalised text of every chunk and writes the index to
// path. It returns the number of indexed chunks.
func (ix *Indexer) Build(ctx context.Context, path string, chunks []domain.Chunk) (int, error) {
	logger.Section("Index Build")
	logger.Debug("Chunks: %d, batch size: %d", len(chunks), ix.batchSize)

	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)
	}
	if ix.embedding == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	entries := make([]driven.IndexEntry, 0, len(chunks))
	dims := 0

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		if ix.limiter != nil {
			if err := ix.limiter.Wait(ctx); err != nil {
				return 0, fmt.Errorf("wait for embedding slot: %w", err)
			}
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Normalized
		}

		vectors, err := ix.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			if errors.Is(err, domain.ErrEmbedding) {
				return 0, err
			}
			return 0, fmt.Errorf("%w: batch %d-%d: %w", domain.ErrEmbedding, start, end, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("%w: batch %d-%d returned %d vectors", domain.ErrEmbedding, start, end, len(vectors))
		}

		for i, vec := range vectors {
			if len(vec) == 0 {
				return 0, fmt.Errorf("%w: empty vector for chunk %d", domain.ErrEmbedding, batch[i].Ordinal)
			}
			if dims == 0 {
				dims = len(vec)
			}
			if len(vec) != dims {
				return 0, fmt.Errorf("%w: chunk %d has %d dimensions, want %d",
					domain.ErrEmbedding, batch[i].Ordinal, len(vec), dims)
			}
			c := batch[i]
			entries = append(entries, driven.IndexEntry{
				Ordinal:   c.Ordinal,
				Key:       c.Key(),
				Text:      c.Text,
				Embedding: NormalizeVector(vec),
			})
		}
		logger.Debug("Embedded chunks %d-%d", start, end-1)
	}

	if err := ix.store.Write(ctx, path, entries); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}

	logger.Info("Indexed %d chunks (%d dimensions)", len(entries), dims)
	return len(entries), nil
}

// NormalizeVector returns v scaled to unit length. A zero vector is
// returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
