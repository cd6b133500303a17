package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/skillbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.VectorIndexStore = (*IndexStore)(nil)

// indexFormatVersion is stored in every index file's meta table.
const indexFormatVersion = 1

const indexSchema = `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE chunks (
    ordinal   INTEGER PRIMARY KEY,
    key       TEXT NOT NULL,
    text      TEXT NOT NULL,
    embedding BLOB NOT NULL
);
`

// IndexStore persists each document's vector index as a standalone SQLite
// file. Opened indexes are loaded fully into memory and searched exactly.
type IndexStore struct {
	now func() time.Time
}

// NewIndexStore creates a file-backed index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{now: time.Now}
}

// Write builds the index under a temporary name next to path and renames it
// into place. On any failure the temporary file is removed and path is left
// as it was.
func (s *IndexStore) Write(ctx context.Context, path string, entries []driven.IndexEntry) (err error) {
	if err := memory.ValidateEntries(entries); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	defer func() {
		if err != nil {
			removeIndexFiles(tmp)
		}
	}()

	if err := s.build(ctx, tmp, entries); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing index: %w", err)
	}
	return nil
}

func (s *IndexStore) build(ctx context.Context, path string, entries []driven.IndexEntry) error {
	// Rollback journal keeps the file self-contained; WAL would leave
	// side files that do not travel with the rename.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)")
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, indexSchema); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}

	meta := map[string]string{
		"format":     strconv.Itoa(indexFormatVersion),
		"dimensions": strconv.Itoa(len(entries[0].Embedding)),
		"count":      strconv.Itoa(len(entries)),
		"created_at": s.now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("writing index meta: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chunks (ordinal, key, text, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Ordinal, e.Key, e.Text, float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", e.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return db.Close()
}

// Open loads the index at path. A missing, empty or unreadable file is
// reported as domain.ErrIndexNotReady.
func (s *IndexStore) Open(ctx context.Context, path string) (driven.VectorIndex, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0) {
		return nil, fmt.Errorf("%w: no index at %s", domain.ErrIndexNotReady, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat index: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", domain.ErrIndexNotReady, path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT ordinal, key, text, embedding FROM chunks ORDER BY ordinal")
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrIndexNotReady, path, err)
	}
	defer rows.Close()

	var entries []driven.IndexEntry
	for rows.Next() {
		var e driven.IndexEntry
		var blob []byte
		if err := rows.Scan(&e.Ordinal, &e.Key, &e.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index rows: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: index at %s is empty", domain.ErrIndexNotReady, path)
	}

	idx, err := memory.NewFlatIndex(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexNotReady, err)
	}
	return idx, nil
}

// removeIndexFiles deletes an index file and any journal left beside it.
func removeIndexFiles(path string) {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
