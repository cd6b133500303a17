package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

var docsJSON bool

var docsCmd = &cobra.Command{
	Use:     "docs",
	Aliases: []string{"documents"},
	Short:   "Manage ingested documents",
	Long:    `List, view or delete ingested skills documents.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsGet,
}

var docsTextCmd = &cobra.Command{
	Use:   "text [doc-id]",
	Short: "Print the extracted text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsText,
}

var docsWorkspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Show which artifacts every workspace holds",
	Long: `Lists every document workspace on disk, including ones whose
ingestion never finished, with the artifacts present in each.`,
	Args: cobra.NoArgs,
	RunE: runDocsWorkspaces,
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document, its workspace and its conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsDelete,
}

func init() {
	docsListCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsGetCmd)
	docsCmd.AddCommand(docsTextCmd)
	docsCmd.AddCommand(docsWorkspacesCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet. Run 'skillbot ingest <file>'.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:   %s\n", docs[i].Name)
		cmd.Printf("    Chunks: %d\n", docs[i].ChunkCount)
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocsGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	printDocument(cmd, doc)
	return nil
}

func printDocument(cmd *cobra.Command, doc *domain.Document) {
	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:        %s\n", doc.Name)
	if doc.Description != "" {
		cmd.Printf("  Description: %s\n", doc.Description)
	}
	cmd.Printf("  Source:      %s (%s)\n", doc.SourceName, doc.MIMEType)
	cmd.Printf("  Chunks:      %d\n", doc.ChunkCount)
	cmd.Printf("  Text:        %s\n", doc.NormalizedTextPath)
	cmd.Printf("  Index:       %s\n", doc.IndexPath)
	cmd.Printf("  Created:     %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
}

func runDocsText(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	text, err := documentService.GetText(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read document text: %w", err)
	}

	cmd.Println(text)
	return nil
}

func runDocsWorkspaces(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	statuses, err := documentService.Workspaces(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}

	if len(statuses) == 0 {
		cmd.Println("No workspaces found.")
		return nil
	}

	cmd.Printf("%-40s %-7s %-5s %-5s\n", "ID", "SOURCE", "TEXT", "INDEX")
	for _, st := range statuses {
		cmd.Printf("%-40s %-7s %-5s %-5s\n", st.DocumentID, yesNo(st.HasSource), yesNo(st.HasText), yesNo(st.HasIndex))
	}
	return nil
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
