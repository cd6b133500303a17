package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose documents and chat to MCP clients",
	Long: `Runs an MCP server with two tools, "ask" and "list_documents", and
one resource per document holding its extracted text.

The server speaks JSON-RPC on stdio unless --addr is given, in which case
it serves the streamable HTTP transport there instead.

Client configuration for stdio:
  {"mcpServers": {"skillbot": {"command": "skillbot", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "serve HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return notConfigured(errChatNotConfigured)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Chat:     chatService,
		Document: documentService,
	}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	if mcpAddr == "" {
		return server.Run(cmd.Context())
	}
	cmd.Printf("MCP server listening on %s\n", mcpAddr)
	return server.RunHTTP(cmd.Context(), mcpAddr)
}
