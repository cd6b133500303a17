package driving

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// IngestionService turns uploaded documents into searchable workspaces.
type IngestionService interface {
	// Ingest runs extraction, chunking, embedding and index build.
	// The returned Document is fully populated only on success.
	Ingest(ctx context.Context, req IngestRequest) (*domain.Document, error)
}

// IngestRequest describes one upload.
type IngestRequest struct {
	// DocumentID is optional; one is generated when empty.
	DocumentID string

	// Name is the display name of the person described.
	Name string

	// Description is optional free text.
	Description string

	// Filename is the original file name, used for type detection.
	Filename string

	// MIMEType is optional; detected from Filename when empty.
	MIMEType string

	// Source is the raw document bytes.
	Source []byte
}
