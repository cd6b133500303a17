// Package driving lists what the core offers to the outside: chat, document
// management and ingestion. The CLI, TUI, HTTP API and MCP server are all
// written against these interfaces and never see a concrete service.
package driving
