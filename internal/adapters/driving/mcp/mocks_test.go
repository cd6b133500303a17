package mcp

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.Answer
	err    error

	history domain.MemoryView

	gotDocumentID string
	gotQuery      string
}

func (m *mockChatService) Ask(_ context.Context, documentID, query string) (*domain.Answer, error) {
	m.gotDocumentID = documentID
	m.gotQuery = query
	return m.answer, m.err
}

func (m *mockChatService) History(_ context.Context, _ string) (domain.MemoryView, error) {
	return m.history, m.err
}

func (m *mockChatService) Stats() domain.ChatStats {
	return domain.ChatStats{}
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	text      string
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetText(_ context.Context, _ string) (string, error) {
	return m.text, m.err
}

func (m *mockDocumentService) Workspaces(_ context.Context) ([]domain.WorkspaceStatus, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
