package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService runs conversational turns against ingested documents.
// Turns for one document are serialised; different documents proceed in
// parallel.
type ChatService struct {
	sessions  *SessionCache
	workspace driven.Workspace
	now       func() time.Time

	turns            atomic.Int64
	failedTurns      atomic.Int64
	rewriteFallbacks atomic.Int64
	summaryFailures  atomic.Int64
}

// NewChatService creates a new chat service.
func NewChatService(sessions *SessionCache, workspace driven.Workspace) *ChatService {
	return &ChatService{
		sessions:  sessions,
		workspace: workspace,
		now:       time.Now,
	}
}

// Ask answers query about documentID and records the turn in the
// session's memory. On error the memory is unchanged.
func (s *ChatService) Ask(ctx context.Context, documentID, query string) (*domain.Answer, error) {
	logger.Section("Chat Turn")
	logger.Debug("Document: %s, query: %q", documentID, query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if err := domain.ValidateDocumentID(documentID); err != nil {
		return nil, err
	}

	answer, err := s.ask(ctx, documentID, query)
	if err != nil {
		s.failedTurns.Add(1)
		if errors.Is(err, domain.ErrConcurrencyViolation) {
			logger.Error("Session %s: %v", documentID, err)
		}
		return nil, err
	}
	s.turns.Add(1)
	return answer, nil
}

func (s *ChatService) ask(ctx context.Context, documentID, query string) (*domain.Answer, error) {
	session, release, err := s.sessions.Acquire(ctx, documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	if !session.inTurn.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConcurrencyViolation, documentID)
	}
	defer session.inTurn.Store(false)

	view := session.memory.View()

	searchQuery, err := session.chain.Rewrite(ctx, view.Window, query)
	fellBack := false
	if err != nil {
		s.rewriteFallbacks.Add(1)
		logger.Warn("Query rewrite failed for %s, using raw query: %v", documentID, err)
		searchQuery = query
		fellBack = true
	}

	passages, err := session.chain.Retrieve(ctx, searchQuery)
	if err != nil {
		return nil, err
	}

	text, err := session.chain.Synthesize(ctx, ComposeContext(view), passages, query)
	if err != nil {
		return nil, err
	}

	turn := domain.Turn{Query: query, Answer: text, At: s.now()}
	if err := session.memory.Append(ctx, turn); err != nil {
		s.summaryFailures.Add(1)
		logger.Error("Session %s: %v (previous summary kept)", documentID, err)
	}

	return &domain.Answer{
		DocumentID:      documentID,
		Query:           query,
		SearchQuery:     searchQuery,
		Text:            text,
		Passages:        passages,
		RewriteFellBack: fellBack,
	}, nil
}

// History returns the memory of documentID's session. A ready document
// without a cached session has an empty history.
func (s *ChatService) History(ctx context.Context, documentID string) (domain.MemoryView, error) {
	if err := domain.ValidateDocumentID(documentID); err != nil {
		return domain.MemoryView{}, err
	}
	if session, ok := s.sessions.Peek(documentID); ok {
		return session.memory.View(), nil
	}
	if !s.workspace.IsReady(ctx, documentID) {
		return domain.MemoryView{}, fmt.Errorf("%w: %s", domain.ErrIndexNotReady, documentID)
	}
	return domain.MemoryView{}, nil
}

// Stats returns the chat counters.
func (s *ChatService) Stats() domain.ChatStats {
	return domain.ChatStats{
		Turns:            s.turns.Load(),
		FailedTurns:      s.failedTurns.Load(),
		RewriteFallbacks: s.rewriteFallbacks.Load(),
		SummaryFailures:  s.summaryFailures.Load(),
		SessionsBuilt:    s.sessions.Built(),
		SessionsEvicted:  s.sessions.Evicted(),
		SessionsCached:   s.sessions.Len(),
	}
}
