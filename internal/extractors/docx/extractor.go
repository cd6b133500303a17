// Package docx extracts text from Word (Office Open XML) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.TextExtractor = (*Extractor)(nil)

const mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extractor reads word/document.xml. Headers, footers and comments are
// ignored.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) SupportedMIMETypes() []string {
	return []string{mimeDOCX}
}

// Extract returns one line per paragraph. Tabs and line breaks inside a
// paragraph are kept.
func (e *Extractor) Extract(_ context.Context, raw []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %w", domain.ErrExtraction, err)
	}
	body, err := archive.Open("word/document.xml")
	if err != nil {
		return "", fmt.Errorf("%w: word/document.xml: %w", domain.ErrExtraction, err)
	}
	defer body.Close()

	text, err := walk(xml.NewDecoder(body))
	if err != nil {
		return "", fmt.Errorf("%w: document.xml: %w", domain.ErrExtraction, err)
	}
	return text, nil
}

// walk streams the WordprocessingML tokens. Only character data inside
// <w:t> is text; everything else between elements is layout whitespace.
func walk(dec *xml.Decoder) (string, error) {
	var out strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(out.String()), nil
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(el)
			}
		}
	}
}
