// Package sqlite provides SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It provides two independent stores:
//
//   - Store: document metadata in <data_dir>/skillbot.db, exposed as a
//     driven.DocumentStore
//   - IndexStore: one self-contained index.db per document workspace holding
//     chunk text and float32 embedding blobs, exposed as a driven.VectorIndexStore
//
// # Schema
//
// The metadata schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomicity
//
// Index files are built under a temporary name in the destination directory
// and renamed into place, so a reader sees either the previous complete index
// or the new one.
package sqlite
