package domain

import (
	"fmt"
	"strconv"
	"time"
	"unicode"
)

// CitationPrefix prefixes every chunk citation key.
const CitationPrefix = "chunk_"

// CitationKey returns the stable citation key for a chunk ordinal.
func CitationKey(ordinal int) string {
	return CitationPrefix + strconv.Itoa(ordinal)
}

// MaxDocumentIDLength bounds caller-supplied document ids.
const MaxDocumentIDLength = 128

// ValidateDocumentID checks that id is usable as a workspace directory name:
// letters, digits, '-', '_' and '.', not starting with '.'.
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is empty", ErrInvalidInput)
	}
	if len(id) > MaxDocumentIDLength {
		return fmt.Errorf("%w: document id longer than %d bytes", ErrInvalidInput, MaxDocumentIDLength)
	}
	if id[0] == '.' {
		return fmt.Errorf("%w: document id %q starts with '.'", ErrInvalidInput, id)
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		return fmt.Errorf("%w: document id %q contains %q", ErrInvalidInput, id, r)
	}
	return nil
}

// Document represents an ingested skills document.
// It is immutable once ingestion succeeds.
type Document struct {
	// ID is the unique identifier for the document and its workspace.
	ID string

	// Name is the display name of the person the document describes.
	Name string

	// Description is free-form text supplied at upload.
	Description string

	// SourceName is the original file name of the upload.
	SourceName string

	// MIMEType is the detected or declared type of the raw source.
	MIMEType string

	// RawSourcePath is where the uploaded bytes are stored.
	RawSourcePath string

	// NormalizedTextPath is where the extracted text is stored.
	NormalizedTextPath string

	// IndexPath is where the vector index artifact is stored.
	IndexPath string

	// ChunkCount is the number of chunks in the index.
	ChunkCount int

	// CreatedAt is when ingestion completed.
	CreatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Chunks exist only while an index is being built.
type Chunk struct {
	// Ordinal is the zero-based position within the document.
	Ordinal int

	// Text is the chunk text before normalisation.
	Text string

	// Normalized is the text used for embedding.
	Normalized string

	// Embedding is the vector representation of Normalized.
	Embedding []float32
}

// Key returns the chunk's citation key.
func (c Chunk) Key() string {
	return CitationKey(c.Ordinal)
}

// Passage is a chunk returned by similarity search.
type Passage struct {
	Ordinal int
	Key     string
	Text    string
	Score   float64
}

// WorkspaceStatus describes which artifacts exist for a document id.
type WorkspaceStatus struct {
	DocumentID string
	HasSource  bool
	HasText    bool
	HasIndex   bool
}
