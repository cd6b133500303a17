package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps document records in a map. Service tests use it in
// place of sqlite.
type DocumentStore struct {
	mu   sync.RWMutex
	byID map[string]domain.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{byID: map[string]domain.Document{}}
}

func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	s.byID[doc.ID] = *doc
	s.mu.Unlock()
	return nil
}

// GetDocument returns a copy, so callers may modify it freely.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	doc, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
	return nil
}

// ListDocuments orders like the sqlite store: newest first, ties by id.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	docs := slices.Collect(maps.Values(s.byID))
	s.mu.RUnlock()

	slices.SortFunc(docs, func(a, b domain.Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}
