package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/watcher"
)

var (
	serveAddr  string
	serveInbox string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the JSON HTTP API:

  GET    /health                  liveness
  GET    /docs                    workspaces and their artifacts
  GET    /documents               ingested documents, newest first
  POST   /documents               multipart upload (name, description, file)
  GET    /documents/{id}          one document
  DELETE /documents/{id}          delete a document
  GET    /documents/{id}/history  remembered conversation
  POST   /chat                    {"query": "...", "doc_id": "..."}
  GET    /metrics                 chat counters

With --inbox, files dropped into that directory are ingested as well.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveInbox, "inbox", "", "directory to watch for new documents")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}
	if chatService == nil {
		cmd.PrintErrf("warning: %v\n", notConfigured(errChatNotConfigured))
	}

	settings := appSettings.Server
	if serveAddr != "" {
		settings.Addr = serveAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Chat:      chatService,
		Document:  documentService,
		Ingestion: ingestionService,
	}, settings)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	if serveInbox != "" {
		if ingestionService == nil {
			return notConfigured(errIngestionNotConfigured)
		}
		inbox, err := watcher.New(serveInbox, ingestionService, 0)
		if err != nil {
			return err
		}
		inbox.OnResult(func(r watcher.Result) { reportInboxResult(cmd, r) })
		g.Go(func() error { return inbox.Run(ctx) })
	}

	cmd.Printf("skillbot API listening on %s\n", settings.Addr)
	g.Go(func() error { return server.Run(ctx) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
