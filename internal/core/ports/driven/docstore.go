package driven

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// DocumentStore keeps one record per ingested document.
type DocumentStore interface {
	// SaveDocument inserts doc or overwrites the record with the same ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument returns domain.ErrNotFound for unknown ids.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument is a no-op for unknown ids.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments orders by creation time, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
