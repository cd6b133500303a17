package mcp

import (
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Chat answers questions about a document.
	Chat driving.ChatService

	// Document lists documents and serves their text. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
