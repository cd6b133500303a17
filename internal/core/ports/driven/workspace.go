package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// Workspace stores the artifacts of one document under its id so two
// documents never collide.
type Workspace interface {
	// Create materialises the workspace for id. It is idempotent.
	Create(ctx context.Context, id string) (WorkspacePaths, error)

	// Paths returns artifact locations for id without touching storage.
	Paths(id string) WorkspacePaths

	// WriteSource stores the raw upload under the given file extension
	// and returns its path.
	WriteSource(ctx context.Context, id, ext string, raw []byte) (string, error)

	// WriteText stores the extracted text with its header and returns its path.
	WriteText(ctx context.Context, id string, header TextHeader, text string) (string, error)

	// ReadText returns the stored text and its header.
	ReadText(ctx context.Context, id string) (TextHeader, string, error)

	// PromoteIndex moves the index built at StagedIndex over Index.
	PromoteIndex(ctx context.Context, id string) error

	// RemoveIndex deletes the index and any staged index so the workspace
	// is no longer ready. Missing files are not an error.
	RemoveIndex(ctx context.Context, id string) error

	// IsReady reports whether a complete, non-empty index exists for id.
	IsReady(ctx context.Context, id string) bool

	// List reports the artifacts present in every workspace.
	List(ctx context.Context) ([]domain.WorkspaceStatus, error)

	// Remove deletes the workspace and everything in it.
	Remove(ctx context.Context, id string) error
}

// WorkspacePaths are the artifact locations for one document.
// The raw source path depends on the upload's extension and is
// returned by WriteSource.
type WorkspacePaths struct {
	Dir   string
	Text  string
	Index string

	// StagedIndex is where a replacement index is built. It never counts
	// towards readiness until PromoteIndex moves it over Index.
	StagedIndex string
}

// TextHeader is stored alongside the extracted text.
type TextHeader struct {
	DocumentID  string    `yaml:"document_id"`
	Name        string    `yaml:"name,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Source      string    `yaml:"source,omitempty"`
	MIMEType    string    `yaml:"mime_type,omitempty"`
	ExtractedAt time.Time `yaml:"extracted_at"`
}
