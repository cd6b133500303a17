package extractors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Common MIME types.
const (
	MIMETypePDF      = "application/pdf"
	MIMETypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypeText     = "text/plain"
	MIMETypeMarkdown = "text/markdown"
)

var extensionTypes = map[string]string{
	".pdf":      MIMETypePDF,
	".docx":     MIMETypeDOCX,
	".txt":      MIMETypeText,
	".text":     MIMETypeText,
	".md":       MIMETypeMarkdown,
	".markdown": MIMETypeMarkdown,
}

// Registry maps MIME types to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]driven.TextExtractor)}
}

// Register adds e for every MIME type it supports. Later registrations
// replace earlier ones for the same type.
func (r *Registry) Register(e driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range e.SupportedMIMETypes() {
		r.extractors[mt] = e
	}
}

// Get returns the extractor for mimeType, falling back to the extension
// of filename. Parameters such as charset are ignored.
func (r *Registry) Get(mimeType, filename string) (driven.TextExtractor, error) {
	e, _, err := r.Resolve(mimeType, filename)
	return e, err
}

// Resolve returns the extractor and the MIME type it matched on.
func (r *Registry) Resolve(mimeType, filename string) (driven.TextExtractor, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mt := baseType(mimeType); mt != "" {
		if e, ok := r.extractors[mt]; ok {
			return e, mt, nil
		}
	}
	if mt := DetectMIMEType(filename); mt != "" {
		if e, ok := r.extractors[mt]; ok {
			return e, mt, nil
		}
	}
	return nil, "", fmt.Errorf("%w: %q (%s)", domain.ErrUnsupportedType, filename, mimeType)
}

// List returns the supported MIME types in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.extractors))
	for mt := range r.extractors {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// DetectMIMEType returns the MIME type for a file name's extension,
// or "" when the extension is unknown.
func DetectMIMEType(filename string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(filename))]
}

// ExtensionFor returns the canonical file extension for a MIME type.
func ExtensionFor(mimeType string) string {
	switch baseType(mimeType) {
	case MIMETypePDF:
		return ".pdf"
	case MIMETypeDOCX:
		return ".docx"
	case MIMETypeMarkdown:
		return ".md"
	case MIMETypeText:
		return ".txt"
	default:
		return ".bin"
	}
}

func baseType(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
