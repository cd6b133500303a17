package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService turns an uploaded file into a queryable document:
// store the source, extract text, chunk, embed and write the index.
type IngestionService struct {
	workspace  driven.Workspace
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	indexer    *Indexer
	docStore   driven.DocumentStore
	sessions   *SessionCache
	locks      *DocumentLocks
	now        func() time.Time
}

// IngestionConfig holds the collaborators of an IngestionService.
type IngestionConfig struct {
	Workspace  driven.Workspace
	Extractors driven.ExtractorRegistry
	Pipeline   driven.PostProcessorPipeline
	Indexer    *Indexer
	DocStore   driven.DocumentStore

	// Sessions is optional. When set, a document's session is dropped
	// after it is re-ingested.
	Sessions *SessionCache

	// Locks is optional. Share it with the DocumentService.
	Locks *DocumentLocks
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(cfg IngestionConfig) *IngestionService {
	locks := cfg.Locks
	if locks == nil {
		locks = NewDocumentLocks()
	}
	return &IngestionService{
		workspace:  cfg.Workspace,
		extractors: cfg.Extractors,
		pipeline:   cfg.Pipeline,
		indexer:    cfg.Indexer,
		docStore:   cfg.DocStore,
		sessions:   cfg.Sessions,
		locks:      locks,
		now:        time.Now,
	}
}

// Locks returns the per-document locks used by this service.
func (s *IngestionService) Locks() *DocumentLocks {
	return s.locks
}

// Ingest runs the pipeline for one upload. An empty DocumentID gets a
// generated one. The document is returned only once its index is written;
// until then the workspace is not ready for chat.
func (s *IngestionService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	logger.Section("Ingestion")

	if len(req.Source) == 0 {
		return nil, fmt.Errorf("%w: source is empty", domain.ErrInvalidInput)
	}

	id := strings.TrimSpace(req.DocumentID)
	if id == "" {
		id = uuid.NewString()
	}
	if err := domain.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	logger.Debug("Document: %s, file: %q, type: %q, %d bytes", id, req.Filename, req.MIMEType, len(req.Source))

	extractor, mimeType, err := s.extractors.Resolve(req.MIMEType, req.Filename)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	paths, err := s.workspace.Create(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	text, err := extractor.Extract(ctx, req.Source)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %q contains no text", domain.ErrExtraction, req.Filename)
	}

	chunks, err := s.pipeline.Process(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("chunk text: %w", err)
	}

	// The new index is staged so a failed build leaves an earlier ingest
	// of this id untouched.
	count, err := s.indexer.Build(ctx, paths.StagedIndex, chunks)
	if err != nil {
		return nil, err
	}

	header := driven.TextHeader{
		DocumentID:  id,
		Name:        req.Name,
		Description: req.Description,
		Source:      req.Filename,
		MIMEType:    mimeType,
		ExtractedAt: s.now().UTC(),
	}
	sourcePath, textPath, err := s.commit(ctx, id, filepath.Ext(req.Filename), req.Source, header, text)
	if err != nil {
		return nil, err
	}
	logger.Debug("Stored source at %s, %d characters of text at %s", sourcePath, len([]rune(text)), textPath)

	doc := &domain.Document{
		ID:                 id,
		Name:               displayName(req),
		Description:        req.Description,
		SourceName:         req.Filename,
		MIMEType:           mimeType,
		RawSourcePath:      sourcePath,
		NormalizedTextPath: textPath,
		IndexPath:          paths.Index,
		ChunkCount:         count,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document record: %w", err)
	}

	if s.sessions != nil {
		s.sessions.Invalidate(id)
	}

	logger.Info("Ingested %s (%d chunks)", id, count)
	return doc, nil
}

// commit writes the source and text next to the staged index and then
// promotes it. If any step fails the index is removed, so a workspace
// mixing artifacts from two ingests is never ready.
func (s *IngestionService) commit(ctx context.Context, id, ext string, raw []byte,
	header driven.TextHeader, text string) (sourcePath, textPath string, err error) {
	defer func() {
		if err == nil {
			return
		}
		if rmErr := s.workspace.RemoveIndex(ctx, id); rmErr != nil {
			logger.Warn("Removing index of %s after failed ingest: %v", id, rmErr)
		}
		if s.sessions != nil {
			s.sessions.Invalidate(id)
		}
	}()

	sourcePath, err = s.workspace.WriteSource(ctx, id, ext, raw)
	if err != nil {
		return "", "", fmt.Errorf("store source: %w", err)
	}
	textPath, err = s.workspace.WriteText(ctx, id, header, text)
	if err != nil {
		return "", "", fmt.Errorf("store text: %w", err)
	}
	if err = s.workspace.PromoteIndex(ctx, id); err != nil {
		return "", "", err
	}
	return sourcePath, textPath, nil
}

// displayName falls back to the file name without extension.
func displayName(req driving.IngestRequest) string {
	if name := strings.TrimSpace(req.Name); name != "" {
		return name
	}
	base := filepath.Base(req.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
