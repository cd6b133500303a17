package driving

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// DocumentService exposes ingested documents for display.
type DocumentService interface {
	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetText returns the extracted text of a document.
	GetText(ctx context.Context, documentID string) (string, error)

	// Workspaces reports which artifacts exist for every workspace,
	// including ones whose ingestion never completed.
	Workspaces(ctx context.Context) ([]domain.WorkspaceStatus, error)

	// Delete removes a document's record, workspace and cached session.
	Delete(ctx context.Context, documentID string) error
}
