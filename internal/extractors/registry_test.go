package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

type stubExtractor struct {
	types []string
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.types }
func (s *stubExtractor) Extract(context.Context, []byte) (string, error) {
	return "stub", nil
}

func TestRegistry_GetByMIMEType(t *testing.T) {
	r := NewRegistry()
	pdf := &stubExtractor{types: []string{MIMETypePDF}}
	r.Register(pdf)

	got, err := r.Get("application/pdf; charset=binary", "")
	require.NoError(t, err)
	assert.Same(t, pdf, got)
}

func TestRegistry_GetByExtension(t *testing.T) {
	r := NewRegistry()
	md := &stubExtractor{types: []string{MIMETypeMarkdown}}
	r.Register(md)

	got, err := r.Get("application/octet-stream", "Resume.MD")
	require.NoError(t, err)
	assert.Same(t, md, got)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("image/png", "photo.png")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_List(t *testing.T) {
	r := NewDefaultRegistry()
	types := r.List()
	assert.Contains(t, types, MIMETypePDF)
	assert.Contains(t, types, MIMETypeDOCX)
	assert.Contains(t, types, MIMETypeText)
	assert.True(t, len(types) >= 4)
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, MIMETypePDF, DetectMIMEType("cv.pdf"))
	assert.Equal(t, MIMETypeText, DetectMIMEType("notes.TXT"))
	assert.Empty(t, DetectMIMEType("archive.tar.gz"))
	assert.Empty(t, DetectMIMEType(""))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".pdf", ExtensionFor(MIMETypePDF))
	assert.Equal(t, ".md", ExtensionFor("text/markdown; charset=utf-8"))
	assert.Equal(t, ".bin", ExtensionFor("application/zip"))
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	md := &stubExtractor{types: []string{MIMETypeMarkdown, MIMETypeText}}
	r.Register(md)

	got, mt, err := r.Resolve("", "cv.md")
	require.NoError(t, err)
	assert.Same(t, md, got)
	assert.Equal(t, MIMETypeMarkdown, mt)

	_, mt, err = r.Resolve("Text/Plain; charset=utf-8", "cv.md")
	require.NoError(t, err)
	assert.Equal(t, MIMETypeText, mt, "declared type wins")
}
