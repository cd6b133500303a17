package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingDocumentID is returned when no document is selected.
var ErrMissingDocumentID = errors.New("tui: document id is required")
