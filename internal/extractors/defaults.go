package extractors

import (
	"github.com/custodia-labs/skillbot/internal/extractors/docx"
	"github.com/custodia-labs/skillbot/internal/extractors/pdf"
	"github.com/custodia-labs/skillbot/internal/extractors/plaintext"
)

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}
