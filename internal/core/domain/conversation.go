package domain

import "time"

// Turn is one question/answer exchange.
type Turn struct {
	Query  string
	Answer string
	At     time.Time
}

// MemoryView is a snapshot of a session's layered memory.
type MemoryView struct {
	// Window holds the most recent turns verbatim, oldest first.
	Window []Turn

	// Buffer holds the most recent turns within the token budget, oldest
	// first. It is bounded independently of Window.
	Buffer []Turn

	// Summary condenses turns already folded out of the buffer.
	Summary string

	// Pending holds turns evicted from Buffer that are not yet
	// folded into Summary.
	Pending []Turn
}

// IsEmpty returns true if no turn has been recorded.
func (v MemoryView) IsEmpty() bool {
	return len(v.Window) == 0 && len(v.Buffer) == 0 && len(v.Pending) == 0 && v.Summary == ""
}

// Verbatim returns every turn still held word for word, oldest first.
// Pending followed by Buffer and Window are both suffixes of the
// conversation, so the longer one covers the other.
func (v MemoryView) Verbatim() []Turn {
	turns := make([]Turn, 0, len(v.Pending)+len(v.Buffer))
	turns = append(turns, v.Pending...)
	turns = append(turns, v.Buffer...)
	if len(v.Window) > len(turns) {
		turns = append(turns[:0], v.Window...)
	}
	return turns
}

// Answer is the result of one successful chat turn.
type Answer struct {
	// DocumentID is the document the question was asked against.
	DocumentID string

	// Query is the user's question as received.
	Query string

	// SearchQuery is the query used for retrieval. It equals Query
	// when rewriting fell back.
	SearchQuery string

	// Text is the synthesised answer.
	Text string

	// Passages are the chunks given to the synthesiser, best first.
	Passages []Passage

	// RewriteFellBack is true when the raw query was used for retrieval.
	RewriteFellBack bool
}

// ChatStats are process-wide counters for the chat engine.
type ChatStats struct {
	Turns            int64 `json:"turns"`
	FailedTurns      int64 `json:"failed_turns"`
	RewriteFallbacks int64 `json:"rewrite_fallbacks"`
	SummaryFailures  int64 `json:"summary_failures"`
	SessionsBuilt    int64 `json:"sessions_built"`
	SessionsEvicted  int64 `json:"sessions_evicted"`
	SessionsCached   int   `json:"sessions_cached"`
}
