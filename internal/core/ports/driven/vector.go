package driven

import "context"

// VectorIndex is an opened, immutable per-document similarity index.
type VectorIndex interface {
	// Search returns up to k entries most similar to query, best first.
	// Equal scores are ordered by ascending ordinal.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Dimensions returns the vector size of the index.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorIndexStore persists and reopens vector indexes.
type VectorIndexStore interface {
	// Write persists entries at path atomically. Either the complete
	// index is visible at path afterwards or nothing changes.
	Write(ctx context.Context, path string, entries []IndexEntry) error

	// Open loads the index at path. It returns domain.ErrIndexNotReady
	// if no complete, non-empty index exists there.
	Open(ctx context.Context, path string) (VectorIndex, error)
}

// IndexEntry is one chunk as stored in a vector index.
type IndexEntry struct {
	// Ordinal is the chunk's position in the document.
	Ordinal int

	// Key is the citation key (chunk_<ordinal>).
	Key string

	// Text is the pre-normalisation chunk text.
	Text string

	// Embedding is the unit-length vector of the normalised text.
	Embedding []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	Ordinal int
	Key     string
	Text    string

	// Similarity is the cosine similarity score.
	Similarity float64
}
