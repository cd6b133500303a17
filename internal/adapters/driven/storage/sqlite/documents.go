package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*documentStore)(nil)

// DocumentStore exposes the documents table.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{db: s.db}
}

type documentStore struct {
	db *sql.DB
}

const (
	selectDocuments = `SELECT id, name, description, source_name, mime_type,
		raw_source_path, text_path, index_path, chunk_count, created_at FROM documents`

	upsertDocument = `INSERT INTO documents (id, name, description, source_name, mime_type,
		raw_source_path, text_path, index_path, chunk_count, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name, description = excluded.description,
		source_name = excluded.source_name, mime_type = excluded.mime_type,
		raw_source_path = excluded.raw_source_path, text_path = excluded.text_path,
		index_path = excluded.index_path, chunk_count = excluded.chunk_count,
		created_at = excluded.created_at`
)

// SaveDocument inserts doc or replaces the row with the same id.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, upsertDocument,
		doc.ID, doc.Name, doc.Description, doc.SourceName, doc.MIMEType,
		doc.RawSourcePath, doc.NormalizedTextPath, doc.IndexPath, doc.ChunkCount, doc.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	err := scanInto(s.db.QueryRowContext(ctx, selectDocuments+` WHERE id = ?`, id), &doc)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}
	return &doc, nil
}

// DeleteDocument is idempotent.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// ListDocuments returns every document, newest first, ties by id.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocuments+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := scanInto(rows, &doc); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// scanInto reads one row in selectDocuments column order. It takes both
// *sql.Row and *sql.Rows.
func scanInto(row interface{ Scan(...any) error }, doc *domain.Document) error {
	return row.Scan(&doc.ID, &doc.Name, &doc.Description, &doc.SourceName, &doc.MIMEType,
		&doc.RawSourcePath, &doc.NormalizedTextPath, &doc.IndexPath, &doc.ChunkCount, &doc.CreatedAt)
}
