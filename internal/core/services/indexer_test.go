package services

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// recordingIndexStore keeps written entries in memory.
type recordingIndexStore struct {
	writes  int
	entries []driven.IndexEntry
}

func (r *recordingIndexStore) Write(_ context.Context, _ string, entries []driven.IndexEntry) error {
	r.writes++
	r.entries = entries
	return nil
}

func (r *recordingIndexStore) Open(context.Context, string) (driven.VectorIndex, error) {
	return nil, domain.ErrIndexNotReady
}

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			Ordinal:    i,
			Text:       "Chunk Text " + string(rune('A'+i)),
			Normalized: "chunk text " + string(rune('a'+i)),
		}
	}
	return chunks
}

func TestIndexer_Build(t *testing.T) {
	embed := newFakeEmbedding()
	store := &recordingIndexStore{}
	ix := NewIndexer(embed, store, domain.IndexSettings{BatchSize: 2})

	n, err := ix.Build(context.Background(), "index.db", testChunks(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 3, embed.batchCount())
	assert.Equal(t, 1, store.writes)

	require.Len(t, store.entries, 5)
	for i, e := range store.entries {
		assert.Equal(t, i, e.Ordinal)
		assert.Equal(t, domain.CitationKey(i), e.Key)
		assert.Equal(t, "Chunk Text "+string(rune('A'+i)), e.Text, "stores the text before normalisation")

		var sum float64
		for _, x := range e.Embedding {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "embedding is unit length")
	}
}

func TestIndexer_Build_RateLimited(t *testing.T) {
	embed := newFakeEmbedding()
	store := &recordingIndexStore{}
	ix := NewIndexer(embed, store, domain.IndexSettings{BatchSize: 1, RequestsPerSecond: 1000, Burst: 4})

	n, err := ix.Build(context.Background(), "index.db", testChunks(3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestIndexer_Build_CancelledWhileWaiting(t *testing.T) {
	ix := NewIndexer(newFakeEmbedding(), &recordingIndexStore{}, domain.IndexSettings{BatchSize: 1, RequestsPerSecond: 0.001, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ix.Build(ctx, "index.db", testChunks(2))
	require.Error(t, err)
}

func TestIndexer_Build_Errors(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []domain.Chunk
		setup   func(*fakeEmbedding)
		wantErr error
	}{
		{
			name:    "no chunks",
			chunks:  nil,
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "provider fails on a later batch",
			chunks:  testChunks(5),
			setup:   func(f *fakeEmbedding) { f.failOnBatch = 2 },
			wantErr: domain.ErrEmbedding,
		},
		{
			name:   "count mismatch",
			chunks: testChunks(2),
			setup: func(f *fakeEmbedding) {
				f.vectors = func([]string) [][]float32 { return [][]float32{{1, 0}} }
			},
			wantErr: domain.ErrEmbedding,
		},
		{
			name:   "empty vector",
			chunks: testChunks(2),
			setup: func(f *fakeEmbedding) {
				f.vectors = func([]string) [][]float32 { return [][]float32{{1, 0}, {}} }
			},
			wantErr: domain.ErrEmbedding,
		},
		{
			name:   "dimension mismatch",
			chunks: testChunks(2),
			setup: func(f *fakeEmbedding) {
				f.vectors = func([]string) [][]float32 { return [][]float32{{1, 0}, {1, 0, 0}} }
			},
			wantErr: domain.ErrEmbedding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := newFakeEmbedding()
			if tt.setup != nil {
				tt.setup(embed)
			}
			store := &recordingIndexStore{}
			ix := NewIndexer(embed, store, domain.IndexSettings{BatchSize: 2})

			_, err := ix.Build(context.Background(), "index.db", tt.chunks)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, store.writes, "nothing is written on failure")
		})
	}
}

func TestIndexer_Build_NoEmbeddingService(t *testing.T) {
	ix := NewIndexer(nil, &recordingIndexStore{}, domain.IndexSettings{BatchSize: 2})
	_, err := ix.Build(context.Background(), "index.db", testChunks(1))
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexer_Build_FailureLeavesNoArtifact(t *testing.T) {
	embed := newFakeEmbedding()
	embed.failOnBatch = 3
	store := sqlite.NewIndexStore()
	path := filepath.Join(t.TempDir(), "index.db")

	ix := NewIndexer(embed, store, domain.IndexSettings{BatchSize: 2})
	_, err := ix.Build(context.Background(), path, testChunks(6))
	require.ErrorIs(t, err, domain.ErrEmbedding)

	_, err = store.Open(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.NoFileExists(t, path)
}

func TestNormalizeVector(t *testing.T) {
	got := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, got[0], 1e-6)
	assert.InDelta(t, 0.8, got[1], 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))

	in := []float32{1, 1}
	_ = NormalizeVector(in)
	assert.Equal(t, []float32{1, 1}, in, "input is not modified")
}
