// Package mcp exposes skillbot over the Model Context Protocol so AI
// assistants can ask questions about ingested skills documents.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
