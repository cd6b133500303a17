package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService reads and removes ingested documents.
type DocumentService struct {
	docStore  driven.DocumentStore
	workspace driven.Workspace
	sessions  *SessionCache
	locks     *DocumentLocks
}

// NewDocumentService creates a new document service. sessions may be nil
// when no chat runs in the process. Pass the ingestion service's locks so
// a delete never races an ingest of the same id.
func NewDocumentService(
	docStore driven.DocumentStore,
	workspace driven.Workspace,
	sessions *SessionCache,
	locks *DocumentLocks,
) *DocumentService {
	if locks == nil {
		locks = NewDocumentLocks()
	}
	return &DocumentService{
		docStore:  docStore,
		workspace: workspace,
		sessions:  sessions,
		locks:     locks,
	}
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if err := domain.ValidateDocumentID(documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// GetText returns the extracted text of a document.
func (s *DocumentService) GetText(ctx context.Context, documentID string) (string, error) {
	if err := domain.ValidateDocumentID(documentID); err != nil {
		return "", err
	}
	_, text, err := s.workspace.ReadText(ctx, documentID)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Workspaces lists every workspace with the artifacts it holds.
func (s *DocumentService) Workspaces(ctx context.Context) ([]domain.WorkspaceStatus, error) {
	return s.workspace.List(ctx)
}

// Delete removes a document's record, its workspace and its session.
// Deleting an unknown id returns domain.ErrNotFound.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if err := domain.ValidateDocumentID(documentID); err != nil {
		return err
	}

	unlock := s.locks.Lock(documentID)
	defer unlock()

	_, recErr := s.docStore.GetDocument(ctx, documentID)
	if recErr != nil && !errors.Is(recErr, domain.ErrNotFound) {
		return recErr
	}

	exists := recErr == nil
	if !exists {
		statuses, err := s.workspace.List(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			if st.DocumentID == documentID {
				exists = true
				break
			}
		}
	}
	if !exists {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	if s.sessions != nil {
		s.sessions.Invalidate(documentID)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete record: %w", err)
	}
	if err := s.workspace.Remove(ctx, documentID); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}
