package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and passages", func(t *testing.T) {
		chat := &mockChatService{
			answer: &domain.Answer{
				DocumentID:  "doc-1",
				Query:       "طراحی سایت بلدی؟",
				SearchQuery: "طراحی سایت",
				Text:        "آره، طراحی سایت بلدم.",
				Passages: []domain.Passage{
					{Ordinal: 0, Key: "chunk_0", Text: "مهارت: طراحی سایت", Score: 0.91},
				},
			},
		}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1", Query: "طراحی سایت بلدی؟"})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", chat.gotDocumentID)
		assert.Equal(t, "طراحی سایت بلدی؟", chat.gotQuery)
		assert.Equal(t, "آره، طراحی سایت بلدم.", output.Answer)
		assert.Equal(t, "طراحی سایت", output.SearchQuery)
		require.Len(t, output.Passages, 1)
		assert.Equal(t, "chunk_0", output.Passages[0].Key)
		assert.InDelta(t, 0.91, output.Passages[0].Score, 1e-9)
	})

	t.Run("not ingested document gets a readable error", func(t *testing.T) {
		chat := &mockChatService{err: fmt.Errorf("doc-9: %w", domain.ErrIndexNotReady)}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-9", Query: "سلام"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not ingested")
	})

	t.Run("passes other errors through", func(t *testing.T) {
		chat := &mockChatService{err: errors.New("llm down")}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{DocumentID: "doc-1", Query: "سلام"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm down")
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		docs := &mockDocumentService{
			documents: []domain.Document{
				{ID: "doc-1", Name: "Sara", ChunkCount: 3},
				{ID: "doc-2", Name: "Reza", Description: "backend", ChunkCount: 5},
			},
		}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Document: docs})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "doc-2", output.Documents[1].ID)
		assert.Equal(t, "backend", output.Documents[1].Description)
		assert.Equal(t, 5, output.Documents[1].ChunkCount)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("storage error")}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, Document: docs})
		require.NoError(t, err)

		_, _, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{})
		assert.Error(t, err)
	})
}
