package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

func TestDocumentService_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.ingestText(t, "doc-a", skillsDocument)
	env.ingestText(t, "doc-b", skillsDocument)

	docs, err := env.documents.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	doc, err := env.documents.Get(ctx, "doc-a")
	require.NoError(t, err)
	assert.Equal(t, "Test Person", doc.Name)

	_, err = env.documents.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.documents.Get(ctx, "bad/id")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_GetText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.ingestText(t, "doc-a", skillsDocument)

	text, err := env.documents.GetText(ctx, "doc-a")
	require.NoError(t, err)
	assert.Contains(t, text, skillsDocument)

	_, err = env.documents.GetText(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Workspaces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.ingestText(t, "doc-a", skillsDocument)

	_, err := env.ws.Create(ctx, "doc-b")
	require.NoError(t, err)
	_, err = env.ws.WriteSource(ctx, "doc-b", ".pdf", []byte("%PDF"))
	require.NoError(t, err)

	statuses, err := env.documents.Workspaces(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, domain.WorkspaceStatus{DocumentID: "doc-a", HasSource: true, HasText: true, HasIndex: true}, statuses[0])
	assert.Equal(t, domain.WorkspaceStatus{DocumentID: "doc-b", HasSource: true}, statuses[1])
}

func TestDocumentService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.ingestText(t, "doc-a", skillsDocument)

	_, err := env.chat.Ask(ctx, "doc-a", "سلام")
	require.NoError(t, err)
	require.Equal(t, 1, env.sessions.Len())

	require.NoError(t, env.documents.Delete(ctx, "doc-a"))

	assert.Equal(t, 0, env.sessions.Len())
	assert.False(t, env.ws.IsReady(ctx, "doc-a"))
	_, err = env.documents.Get(ctx, "doc-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.chat.Ask(ctx, "doc-a", "سلام")
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)

	err = env.documents.Delete(ctx, "doc-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_DeleteOrphanWorkspace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ws.Create(ctx, "orphan")
	require.NoError(t, err)

	require.NoError(t, env.documents.Delete(ctx, "orphan"))
	statuses, err := env.documents.Workspaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
