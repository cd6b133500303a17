package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
)

// maxChatBody bounds the JSON body of a chat request.
const maxChatBody = 64 << 10

// DocumentResponse is the JSON form of a document record.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SourceName  string    `json:"source_name"`
	MIMEType    string    `json:"mime_type"`
	SourcePath  string    `json:"source_path"`
	TextPath    string    `json:"text_path"`
	IndexPath   string    `json:"index_path"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkspaceResponse reports which artifacts a workspace holds.
type WorkspaceResponse struct {
	DocID  string `json:"doc_id"`
	Source bool   `json:"source"`
	Text   bool   `json:"text"`
	Index  bool   `json:"index"`
}

// ChatRequest is the body of POST /chat. FreelancerID is accepted as an
// alias of DocID.
type ChatRequest struct {
	Query        string `json:"query"`
	DocID        string `json:"doc_id"`
	FreelancerID string `json:"freelancer_id"`
}

// ChatResponse is the body of a successful chat turn.
type ChatResponse struct {
	Answer          string            `json:"answer"`
	DocID           string            `json:"doc_id"`
	SearchQuery     string            `json:"search_query"`
	RewriteFellBack bool              `json:"rewrite_fell_back"`
	Passages        []PassageResponse `json:"passages"`
}

// PassageResponse is one retrieved chunk.
type PassageResponse struct {
	Key   string  `json:"key"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// TurnResponse is one remembered exchange.
type TurnResponse struct {
	Query  string    `json:"query"`
	Answer string    `json:"answer"`
	At     time.Time `json:"at"`
}

// HistoryResponse is the memory of a cached session.
type HistoryResponse struct {
	DocID   string         `json:"doc_id"`
	Summary string         `json:"summary"`
	Pending []TurnResponse `json:"pending"`
	Buffer  []TurnResponse `json:"buffer"`
	Window  int            `json:"window"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.ports.Document.Workspaces(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]WorkspaceResponse, len(statuses))
	for i, st := range statuses {
		items[i] = WorkspaceResponse{
			DocID:  st.DocumentID,
			Source: st.HasSource,
			Text:   st.HasText,
			Index:  st.HasIndex,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Document.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ports.Document.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Document.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload ingests a multipart upload with fields name, description
// and file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingestion == nil {
		writeError(w, fmt.Errorf("%w: ingestion is not configured", domain.ErrEmbeddingUnavailable))
		return
	}

	maxBytes := s.settings.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = domain.DefaultAppSettings().Server.MaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeError(w, fmt.Errorf("%w: name is required", domain.ErrInvalidInput))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: file is required", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("%w: reading file: %w", domain.ErrInvalidInput, err))
		return
	}

	doc, err := s.ports.Ingestion.Ingest(r.Context(), driving.IngestRequest{
		DocumentID:  strings.TrimSpace(r.FormValue("id")),
		Name:        name,
		Description: strings.TrimSpace(r.FormValue("description")),
		Filename:    header.Filename,
		MIMEType:    header.Header.Get("Content-Type"),
		Source:      raw,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := documentResponse(doc)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "ok",
		"document":   resp,
		"freelancer": resp,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.ports.Chat == nil {
		writeError(w, fmt.Errorf("%w: chat is not configured", domain.ErrLLMUnavailable))
		return
	}

	var req ChatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxChatBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput))
		return
	}

	docID := req.DocID
	if docID == "" {
		docID = req.FreelancerID
	}
	if docID == "" {
		writeError(w, fmt.Errorf("%w: doc_id or freelancer_id is required", domain.ErrInvalidInput))
		return
	}

	answer, err := s.ports.Chat.Ask(r.Context(), docID, req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			writeError(w, fmt.Errorf("index not found for this id, upload the document first: %w", err))
			return
		}
		writeError(w, err)
		return
	}

	resp := ChatResponse{
		Answer:          answer.Text,
		DocID:           answer.DocumentID,
		SearchQuery:     answer.SearchQuery,
		RewriteFellBack: answer.RewriteFellBack,
		Passages:        make([]PassageResponse, len(answer.Passages)),
	}
	for i, p := range answer.Passages {
		resp.Passages[i] = PassageResponse{Key: p.Key, Text: p.Text, Score: p.Score}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.ports.Chat == nil {
		writeError(w, fmt.Errorf("%w: chat is not configured", domain.ErrLLMUnavailable))
		return
	}

	id := r.PathValue("id")
	view, err := s.ports.Chat.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		DocID:   id,
		Summary: view.Summary,
		Pending: turnResponses(view.Pending),
		Buffer:  turnResponses(view.Buffer),
		Window:  len(view.Window),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.ports.Chat == nil {
		writeJSON(w, http.StatusOK, domain.ChatStats{})
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Chat.Stats())
}

func documentResponse(doc *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		SourceName:  doc.SourceName,
		MIMEType:    doc.MIMEType,
		SourcePath:  doc.RawSourcePath,
		TextPath:    doc.NormalizedTextPath,
		IndexPath:   doc.IndexPath,
		ChunkCount:  doc.ChunkCount,
		CreatedAt:   doc.CreatedAt,
	}
}

func turnResponses(turns []domain.Turn) []TurnResponse {
	out := make([]TurnResponse, len(turns))
	for i, t := range turns {
		out[i] = TurnResponse{Query: t.Query, Answer: t.Answer, At: t.At}
	}
	return out
}
