package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

const (
	documentsURI = "skillbot://documents"
	mimeJSON     = "application/json"
	mimeMarkdown = "text/markdown"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Every ingested skills document",
		MIMEType:    mimeJSON,
	}, s.readDocuments)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}",
		Name:        "document-text",
		Description: "Extracted text of one skills document",
		MIMEType:    mimeMarkdown,
	}, s.readDocumentText)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsURI + "/{documentId}/memory",
		Name:        "document-memory",
		Description: "Conversation memory of the cached chat session for a document",
		MIMEType:    mimeJSON,
	}, s.readDocumentMemory)
}

func (s *Server) readDocuments(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out := []DocumentOutput{}
	if s.ports.Document != nil {
		docs, err := s.ports.Document.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for i := range docs {
			out = append(out, documentOutput(&docs[i]))
		}
	}
	return contents(req.Params.URI, mimeJSON, out)
}

func (s *Server) readDocumentText(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, sub := parseDocumentURI(uri)
	if s.ports.Document == nil || id == "" || sub != "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	text, err := s.ports.Document.GetText(ctx, id)
	if err != nil {
		return nil, notFoundOr(uri, err, "reading document text")
	}
	return contents(uri, mimeMarkdown, text)
}

// MemoryOutput is the JSON form of a session's memory.
type MemoryOutput struct {
	Summary string       `json:"summary,omitempty"`
	Buffer  []TurnOutput `json:"buffer"`
	Window  []TurnOutput `json:"window"`
	Pending int          `json:"pending_turns"`
}

// TurnOutput is one remembered exchange.
type TurnOutput struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
	At     string `json:"at,omitempty"`
}

func (s *Server) readDocumentMemory(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, sub := parseDocumentURI(uri)
	if id == "" || sub != "memory" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	view, err := s.ports.Chat.History(ctx, id)
	if err != nil {
		return nil, notFoundOr(uri, err, "reading memory")
	}
	return contents(uri, mimeJSON, MemoryOutput{
		Summary: view.Summary,
		Buffer:  turnOutputs(view.Buffer),
		Window:  turnOutputs(view.Window),
		Pending: len(view.Pending),
	})
}

func turnOutputs(turns []domain.Turn) []TurnOutput {
	out := make([]TurnOutput, len(turns))
	for i, t := range turns {
		out[i] = TurnOutput{Query: t.Query, Answer: t.Answer}
		if !t.At.IsZero() {
			out[i].At = t.At.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return out
}

// notFoundOr maps unknown or malformed ids to a resource-not-found error
// and wraps everything else with what.
func notFoundOr(uri string, err error, what string) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrIndexNotReady) {
		return mcp.ResourceNotFoundError(uri)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// contents renders body as the single entry of a read result. Strings are
// sent as is and anything else as indented JSON.
func contents(uri, mime string, body any) (*mcp.ReadResourceResult, error) {
	text, ok := body.(string)
	if !ok {
		data, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", uri, err)
		}
		text = string(data)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mime, Text: text}},
	}, nil
}

// parseDocumentURI splits skillbot://documents/{id}[/{sub}]. The id is
// empty when uri is not a document URI or has more segments.
func parseDocumentURI(uri string) (id, sub string) {
	rest, ok := strings.CutPrefix(uri, documentsURI+"/")
	if !ok {
		return "", ""
	}
	id, sub, _ = strings.Cut(rest, "/")
	if id == "" || strings.Contains(sub, "/") {
		return "", ""
	}
	return id, sub
}
