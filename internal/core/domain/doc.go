// Package domain holds the types every other package shares: documents and
// their chunks, retrieved passages, conversation turns and the memory view,
// provider and application settings, and the error sentinels.
//
// It imports only the standard library.
package domain
