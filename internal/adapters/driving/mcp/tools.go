package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the ingested skills document to ask about"`
	Query      string `json:"query" jsonschema:"the question, usually in Persian"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer      string          `json:"answer"`
	SearchQuery string          `json:"search_query"`
	Passages    []PassageOutput `json:"passages"`
}

// PassageOutput is one retrieved chunk.
type PassageOutput struct {
	Key   string  `json:"key"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput summarises one document.
type DocumentOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ChunkCount  int    `json:"chunk_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about a person's ingested skills document. The conversation is remembered per document.",
	}, s.handleAsk)

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List ingested skills documents",
		}, s.handleListDocuments)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, input.DocumentID, input.Query)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			return nil, AskOutput{}, fmt.Errorf("document %q is not ingested yet", input.DocumentID)
		}
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:      answer.Text,
		SearchQuery: answer.SearchQuery,
		Passages:    make([]PassageOutput, len(answer.Passages)),
	}
	for i, p := range answer.Passages {
		output.Passages[i] = PassageOutput{Key: p.Key, Text: p.Text, Score: p.Score}
	}

	return nil, output, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(&docs[i])
	}
	return nil, output, nil
}

func documentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		ChunkCount:  doc.ChunkCount,
	}
}
