// Package cli implements the skillbot command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
	"github.com/custodia-labs/skillbot/internal/logger"
)

// version is set by SetVersion from the build.
var version = "dev"

var verbose bool

// Services are injected by the composition root before Execute.
var (
	chatService      driving.ChatService
	documentService  driving.DocumentService
	ingestionService driving.IngestionService
	aiValidator      driven.AIConfigValidator
	appSettings      = domain.DefaultAppSettings()

	// aiInitErr explains why the chat and ingestion services are missing.
	aiInitErr error
)

// Services groups everything the commands call.
type Services struct {
	Chat        driving.ChatService
	Documents   driving.DocumentService
	Ingestion   driving.IngestionService
	AIValidator driven.AIConfigValidator
	Settings    domain.AppSettings

	// AIError is set when the AI providers could not be created. Commands
	// that need them report it instead of a generic message.
	AIError error
}

// SetServices wires the services used by every command.
func SetServices(s Services) {
	chatService = s.Chat
	documentService = s.Documents
	ingestionService = s.Ingestion
	aiValidator = s.AIValidator
	appSettings = s.Settings
	aiInitErr = s.AIError
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "skillbot",
	Short: "Chat with a person's skills document",
	Long: `skillbot ingests a skills document (PDF, text or markdown), builds a
vector index for it and answers questions about it in Persian, remembering
the conversation per document.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve and watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
