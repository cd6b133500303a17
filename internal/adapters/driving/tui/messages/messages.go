// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/skillbot/internal/core/domain"
)

// QuerySubmitted is sent when the user presses enter on a non-empty query.
type QuerySubmitted struct {
	Query string
}

// AnswerReceived carries the result of one chat turn back to the model.
type AnswerReceived struct {
	Query  string
	Answer *domain.Answer
	Err    error
}

// HistoryLoaded carries the conversation restored from a cached session.
type HistoryLoaded struct {
	View domain.MemoryView
	Err  error
}

// DocumentLoaded carries the record of the document being discussed.
type DocumentLoaded struct {
	Document *domain.Document
	Err      error
}

// ErrorOccurred is sent when an error needs to be displayed.
type ErrorOccurred struct {
	Err error
}
