package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
)

var (
	ingestID          string
	ingestName        string
	ingestDescription string
	ingestJSON        bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a skills document",
	Long: `Extracts the text of a PDF, text or markdown file, splits it into
chunks, embeds them and builds the document's vector index.

Ingesting again with the same --id replaces the previous index and starts
a fresh conversation for that document.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document id (generated when empty)")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "name of the person (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "free-form description")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the document as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return notConfigured(errIngestionNotConfigured)
	}

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	filename := filepath.Base(path)
	name := strings.TrimSpace(ingestName)
	if name == "" {
		name = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	doc, err := ingestionService.Ingest(cmd.Context(), driving.IngestRequest{
		DocumentID:  strings.TrimSpace(ingestID),
		Name:        name,
		Description: strings.TrimSpace(ingestDescription),
		Filename:    filename,
		Source:      raw,
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Ingested %s as %s (%d chunks)\n", filename, doc.ID, doc.ChunkCount)
	cmd.Printf("Chat with it: skillbot chat %s\n", doc.ID)
	return nil
}
