package driven

import "context"

// TextExtractor turns raw document bytes into plain text.
// Each extractor handles specific MIME types (e.g., PDF, Markdown).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract converts raw bytes to text. Unreadable input is reported
	// as domain.ErrExtraction.
	Extract(ctx context.Context, raw []byte) (string, error)
}

// ExtractorRegistry selects an extractor for a document.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(e TextExtractor)

	// Get returns the extractor for a MIME type. When mimeType is empty
	// or unknown, the file name extension is consulted.
	Get(mimeType, filename string) (TextExtractor, error)

	// Resolve is Get that also reports the MIME type the extractor was
	// chosen for.
	Resolve(mimeType, filename string) (TextExtractor, string, error)

	// List returns the supported MIME types.
	List() []string
}
