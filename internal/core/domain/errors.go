package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the document type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Chat is disabled without a completion provider.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Neither ingestion nor retrieval can run without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrExtraction indicates the raw source could not be turned into text.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding indicates the embedding provider failed or returned
	// malformed output. Index builds fail atomically on this error.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexNotReady indicates a query against a document without a
	// complete, non-empty vector index.
	ErrIndexNotReady = errors.New("index not ready")

	// Chat Errors.

	// ErrRewrite indicates query rewriting failed. It never aborts a turn;
	// the raw query is used instead.
	ErrRewrite = errors.New("query rewrite failed")

	// ErrCompletion indicates answer synthesis failed. The turn is aborted
	// and memory is left untouched.
	ErrCompletion = errors.New("completion failed")

	// ErrConcurrencyViolation indicates two turns ran against one session
	// at the same time. It signals a locking bug.
	ErrConcurrencyViolation = errors.New("concurrent turn on session")
)

// IsRetryable reports whether err stems from a collaborator outage that a
// caller may retry, as opposed to a permanent failure such as not-found.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrEmbedding) ||
		errors.Is(err, ErrCompletion) ||
		errors.Is(err, ErrLLMUnavailable) ||
		errors.Is(err, ErrEmbeddingUnavailable)
}
