package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest documents dropped into a directory",
	Long: `Ingests every PDF, text and markdown file already in dir, then keeps
watching it. A file is ingested again when it is modified. The document id
is derived from the file name, so a new version replaces the old one.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured(errIngestionNotConfigured)
	}

	inbox, err := watcher.New(args[0], ingestionService, 0)
	if err != nil {
		return err
	}
	inbox.OnResult(func(r watcher.Result) { reportInboxResult(cmd, r) })

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return inbox.Run(cmd.Context())
}

func reportInboxResult(cmd *cobra.Command, r watcher.Result) {
	if r.Err != nil {
		cmd.PrintErrf("failed: %s: %v\n", r.Path, r.Err)
		return
	}
	cmd.Printf("ingested: %s -> %s (%d chunks)\n", r.Path, r.Document.ID, r.Document.ChunkCount)
}
