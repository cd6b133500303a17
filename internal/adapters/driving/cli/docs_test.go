package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

func TestDocsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range docsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get", "text", "workspaces", "delete"}, names)
}

func TestDocsList(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "docs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Name:   Sara")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocsList_JSON(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "docs", "list", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"ID": "doc-1"`)
}

func TestDocsList_Empty(t *testing.T) {
	ts := setupTestServices(t)
	ts.documents.docs = nil

	out, err := execute(t, "", "docs", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents ingested yet")
}

func TestDocsGet(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "docs", "get", "doc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Description: designer")
	assert.Contains(t, out, "Chunks:      3")

	_, err = execute(t, "", "docs", "get", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocsGet_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "docs", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocsText(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "docs", "text", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "مهارت: طراحی سایت")
}

func TestDocsWorkspaces(t *testing.T) {
	ts := setupTestServices(t)
	ts.documents.workspaces = []domain.WorkspaceStatus{
		{DocumentID: "doc-1", HasSource: true, HasText: true, HasIndex: true},
		{DocumentID: "half", HasSource: true},
	}

	out, err := execute(t, "", "docs", "workspaces")

	require.NoError(t, err)
	assert.Contains(t, out, "INDEX")
	assert.Regexp(t, `half\s+yes\s+no\s+no`, out)
}

func TestDocsDelete(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "docs", "delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-1")
	assert.Equal(t, []string{"doc-1"}, ts.documents.deleted)
}

func TestDocs_NotConfigured(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{Settings: domain.DefaultAppSettings()})

	_, err := execute(t, "", "docs", "list")

	assert.ErrorIs(t, err, errDocumentNotConfigured)
}
