package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
)

type mockChatService struct {
	asked []string
	fail  map[string]error
}

func (m *mockChatService) Ask(_ context.Context, documentID, query string) (*domain.Answer, error) {
	if err, ok := m.fail[query]; ok {
		return nil, err
	}
	if documentID == "missing" {
		return nil, fmt.Errorf("%s: %w", documentID, domain.ErrIndexNotReady)
	}
	m.asked = append(m.asked, query)
	return &domain.Answer{
		DocumentID: documentID,
		Query:      query,
		Text:       "answer to " + query,
		Passages:   []domain.Passage{{Key: "chunk_0", Text: "مهارت: طراحی سایت", Score: 0.75}},
	}, nil
}

func (m *mockChatService) History(_ context.Context, _ string) (domain.MemoryView, error) {
	return domain.MemoryView{}, nil
}

func (m *mockChatService) Stats() domain.ChatStats {
	return domain.ChatStats{}
}

type mockDocumentService struct {
	docs       []domain.Document
	workspaces []domain.WorkspaceStatus
	text       string
	deleted    []string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

func (m *mockDocumentService) GetText(_ context.Context, id string) (string, error) {
	if _, err := m.Get(context.Background(), id); err != nil {
		return "", err
	}
	return m.text, nil
}

func (m *mockDocumentService) Workspaces(_ context.Context) ([]domain.WorkspaceStatus, error) {
	return m.workspaces, nil
}

func (m *mockDocumentService) Delete(_ context.Context, id string) error {
	if _, err := m.Get(context.Background(), id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockIngestionService struct {
	got driving.IngestRequest
	err error
}

func (m *mockIngestionService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.Document, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	id := req.DocumentID
	if id == "" {
		id = "generated-id"
	}
	return &domain.Document{ID: id, Name: req.Name, SourceName: req.Filename, ChunkCount: 2}, nil
}

type mockValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockValidator) ValidateEmbedding(context.Context, *domain.EmbeddingSettings) error {
	return m.embedErr
}
func (m *mockValidator) ValidateLLM(context.Context, *domain.LLMSettings) error { return m.llmErr }

type testServices struct {
	chat      *mockChatService
	documents *mockDocumentService
	ingestion *mockIngestionService
	validator *mockValidator
}

// setupTestServices installs mocks and resets flag state between runs.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		chat: &mockChatService{fail: map[string]error{}},
		documents: &mockDocumentService{
			docs: []domain.Document{{ID: "doc-1", Name: "Sara", Description: "designer", ChunkCount: 3}},
			text: "## صفحه 1\nمهارت: طراحی سایت",
		},
		ingestion: &mockIngestionService{},
		validator: &mockValidator{},
	}
	SetServices(Services{
		Chat:        ts.chat,
		Documents:   ts.documents,
		Ingestion:   ts.ingestion,
		AIValidator: ts.validator,
		Settings:    domain.DefaultAppSettings(),
	})
	resetFlags()

	t.Cleanup(func() {
		SetServices(Services{Settings: domain.DefaultAppSettings()})
		resetFlags()
	})
	return ts
}

func resetFlags() {
	verbose = false
	docsJSON = false
	ingestID, ingestName, ingestDescription = "", "", ""
	ingestJSON = false
	chatQuery = ""
	chatSources = false
	serveAddr, serveInbox = "", ""
	mcpAddr = ""
	versionShort = false
	isTerminal = func() bool { return false }
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

var errProviderDown = errors.New("connection refused")
