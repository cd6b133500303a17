package driving

import (
	"context"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// ChatService answers questions about one document in a running conversation.
type ChatService interface {
	// Ask runs one turn: rewrite, retrieve, synthesise, remember.
	// It returns domain.ErrIndexNotReady for documents without an index.
	Ask(ctx context.Context, documentID, query string) (*domain.Answer, error)

	// History returns the memory of the cached session for a document.
	// It returns an empty view when no session is cached.
	History(ctx context.Context, documentID string) (domain.MemoryView, error)

	// Stats returns process-wide counters.
	Stats() domain.ChatStats
}
