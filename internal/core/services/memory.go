package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// LayeredMemory is the conversational memory of one session. It keeps
// three layers:
//
//   - window: the last Window turns verbatim
//   - buffer: the most recent turns whose estimated size fits TokenBudget
//   - summary: a running summary plus the pending turns evicted from the
//     buffer that have not been folded into it yet
//
// The window and the buffer are bounded independently. Turns evicted from
// the buffer move to pending and stay there until a summary refresh
// succeeds, so every turn is held verbatim by the window, the buffer or
// pending until the summary covers it.
//
// Append must not be called concurrently for one memory; the session lock
// serialises writers. View may be called at any time.
type LayeredMemory struct {
	settings   domain.MemorySettings
	summarizer driven.Summarizer

	mu    sync.RWMutex
	state memoryState
}

// NewLayeredMemory creates an empty memory.
func NewLayeredMemory(settings domain.MemorySettings, summarizer driven.Summarizer) *LayeredMemory {
	return &LayeredMemory{
		settings:   settings,
		summarizer: summarizer,
	}
}

// memoryState is one consistent value of all layers.
type memoryState struct {
	window  []domain.Turn
	buffer  []domain.Turn
	summary string
	pending []domain.Turn
}

// Append records turn in every layer.
//
// The turn is always recorded. A non-nil error reports only that the
// summary refresh failed; the previous summary and the pending turns are
// kept and the refresh is retried on the next append.
func (m *LayeredMemory) Append(ctx context.Context, turn domain.Turn) error {
	m.mu.RLock()
	next := memoryState{
		window:  lastTurns(append(cloneTurns(m.state.window), turn), m.settings.Window),
		buffer:  append(cloneTurns(m.state.buffer), turn),
		summary: m.state.summary,
		pending: cloneTurns(m.state.pending),
	}
	m.mu.RUnlock()

	evicted := m.trimBuffer(&next)
	next.pending = append(next.pending, evicted...)

	var refreshErr error
	if len(next.pending) > 0 && estimateTurnsTokens(next.pending) > m.settings.SummaryBudget {
		summary, err := m.summarizer.Summarize(ctx, next.summary, next.pending)
		if err != nil {
			refreshErr = fmt.Errorf("refresh summary: %w", err)
		} else {
			next.summary = summary
			next.pending = nil
		}
	}

	m.mu.Lock()
	m.state = next
	m.mu.Unlock()

	return refreshErr
}

// trimBuffer drops the oldest buffer turns until the buffer fits the token
// budget. A single turn larger than the budget leaves the buffer empty. It
// returns the dropped turns, oldest first.
func (m *LayeredMemory) trimBuffer(s *memoryState) []domain.Turn {
	tokens := estimateTurnsTokens(s.buffer)
	drop := 0
	for tokens > m.settings.TokenBudget && drop < len(s.buffer) {
		tokens -= estimateTurnTokens(s.buffer[drop])
		drop++
	}
	if drop == 0 {
		return nil
	}
	evicted := s.buffer[:drop:drop]
	s.buffer = s.buffer[drop:]
	return evicted
}

// View returns a snapshot of all layers.
func (m *LayeredMemory) View() domain.MemoryView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.MemoryView{
		Window:  cloneTurns(m.state.window),
		Buffer:  cloneTurns(m.state.buffer),
		Summary: m.state.summary,
		Pending: cloneTurns(m.state.pending),
	}
}

func lastTurns(turns []domain.Turn, n int) []domain.Turn {
	if len(turns) > n {
		return turns[len(turns)-n:]
	}
	return turns
}

func cloneTurns(turns []domain.Turn) []domain.Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// ComposedContext is the conversation handed to the answer synthesiser.
type ComposedContext struct {
	// Summary covers turns older than Turns. May be empty.
	Summary string

	// Turns are the verbatim turns, oldest first.
	Turns []domain.Turn
}

// ComposeContext assembles the synthesiser's view of the conversation from
// the memory layers: the summary and every turn still held verbatim.
func ComposeContext(view domain.MemoryView) ComposedContext {
	return ComposedContext{
		Summary: view.Summary,
		Turns:   view.Verbatim(),
	}
}

// Messages renders the turns as alternating user and assistant messages.
func (c ComposedContext) Messages() []driven.ChatMessage {
	return turnMessages(c.Turns)
}

func turnMessages(turns []domain.Turn) []driven.ChatMessage {
	msgs := make([]driven.ChatMessage, 0, 2*len(turns))
	for _, t := range turns {
		msgs = append(msgs,
			driven.ChatMessage{Role: driven.RoleUser, Content: t.Query},
			driven.ChatMessage{Role: driven.RoleAssistant, Content: t.Answer},
		)
	}
	return msgs
}
