package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Ensure the index types implement the interfaces.
var (
	_ driven.VectorIndex      = (*FlatIndex)(nil)
	_ driven.VectorIndexStore = (*IndexStore)(nil)
)

// FlatIndex is an exact, brute-force cosine index. Entries are immutable
// after construction, so Search is safe for concurrent use.
type FlatIndex struct {
	entries    []driven.IndexEntry
	dimensions int
}

// NewFlatIndex builds an index over entries. All embeddings must share one
// non-zero dimension.
func NewFlatIndex(entries []driven.IndexEntry) (*FlatIndex, error) {
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	cp := make([]driven.IndexEntry, len(entries))
	copy(cp, entries)
	return &FlatIndex{entries: cp, dimensions: len(entries[0].Embedding)}, nil
}

// ValidateEntries checks that entries are non-empty and share a dimension.
func ValidateEntries(entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", domain.ErrInvalidInput)
	}
	dim := len(entries[0].Embedding)
	if dim == 0 {
		return fmt.Errorf("%w: entry %d has an empty embedding", domain.ErrInvalidInput, entries[0].Ordinal)
	}
	for _, e := range entries[1:] {
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: entry %d has dimension %d, want %d",
				domain.ErrInvalidInput, e.Ordinal, len(e.Embedding), dim)
		}
	}
	return nil
}

// Search returns up to k entries by descending cosine similarity, ties
// broken by ascending ordinal.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != f.dimensions {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			domain.ErrInvalidInput, len(query), f.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qn := norm(query)
	hits := make([]driven.VectorHit, len(f.entries))
	for i, e := range f.entries {
		hits[i] = driven.VectorHit{
			Ordinal:    e.Ordinal,
			Key:        e.Key,
			Text:       e.Text,
			Similarity: cosine(query, qn, e.Embedding),
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Ordinal < hits[j].Ordinal
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed chunks.
func (f *FlatIndex) Len() int { return len(f.entries) }

// Dimensions returns the vector size.
func (f *FlatIndex) Dimensions() int { return f.dimensions }

// Close is a no-op.
func (f *FlatIndex) Close() error { return nil }

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(q []float32, qn float64, v []float32) float64 {
	vn := norm(v)
	if qn == 0 || vn == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(v[i])
	}
	return dot / (qn * vn)
}

// IndexStore keeps indexes in memory keyed by path.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*FlatIndex
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]*FlatIndex)}
}

// Write replaces the index at path. Invalid entries leave it untouched.
func (s *IndexStore) Write(ctx context.Context, path string, entries []driven.IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx, err := NewFlatIndex(entries)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.indexes[path] = idx
	s.mu.Unlock()
	return nil
}

// Open returns the index at path or domain.ErrIndexNotReady.
func (s *IndexStore) Open(_ context.Context, path string) (driven.VectorIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotReady, path)
	}
	return idx, nil
}

// Exists reports whether an index has been written at path.
func (s *IndexStore) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[path]
	return ok
}

// Remove drops the index at path.
func (s *IndexStore) Remove(path string) {
	s.mu.Lock()
	delete(s.indexes, path)
	s.mu.Unlock()
}
