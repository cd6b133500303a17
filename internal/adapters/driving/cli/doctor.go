package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/skillbot/internal/core/domain"
)

var errDoctorFailed = errors.New("one or more checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and AI provider connectivity",
	Long: `Prints the effective configuration and pings the embedding and LLM
providers. Exits non-zero when a provider is missing or unreachable.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	s := appSettings

	cmd.Println("Storage")
	cmd.Printf("  data dir:  %s\n", s.Storage.DataDir)
	cmd.Printf("  docs dir:  %s\n", s.Storage.DocsDir)
	cmd.Println("Pipeline")
	cmd.Printf("  chunker:   %d words, %d overlap\n", s.Chunker.Size, s.Chunker.Overlap)
	cmd.Printf("  retrieval: top %d, answer temperature %.2f\n", s.Retrieval.TopK, s.Retrieval.AnswerTemperature)
	cmd.Printf("  memory:    window %d, buffer %d tokens, summary after %d tokens\n",
		s.Memory.Window, s.Memory.TokenBudget, s.Memory.SummaryBudget)
	cmd.Printf("  sessions:  %s\n", capacityLabel(s.Sessions.Capacity))

	ok := true
	cmd.Println("Providers")
	if !checkProvider(cmd, "embedding", s.Embedding.Provider, s.Embedding.Model, s.Embedding.IsConfigured(),
		func() error { return aiValidator.ValidateEmbedding(cmd.Context(), &s.Embedding) }) {
		ok = false
	}
	if !checkProvider(cmd, "llm", s.LLM.Provider, s.LLM.Model, s.LLM.IsConfigured(),
		func() error { return aiValidator.ValidateLLM(cmd.Context(), &s.LLM) }) {
		ok = false
	}

	if !ok {
		return errDoctorFailed
	}
	cmd.Println("All checks passed.")
	return nil
}

func checkProvider(
	cmd *cobra.Command,
	label string,
	provider domain.AIProvider,
	model string,
	configured bool,
	ping func() error,
) bool {
	cmd.Printf("  %-9s  %s / %s: ", label, provider.Description(), model)
	switch {
	case !configured:
		cmd.Println("not configured")
		return false
	case aiValidator == nil:
		cmd.Println("configured (not checked)")
		return true
	}
	if err := ping(); err != nil {
		cmd.Printf("unreachable (%v)\n", err)
		return false
	}
	cmd.Println("ok")
	return true
}

func capacityLabel(capacity int) string {
	if capacity == 0 {
		return "unbounded"
	}
	return fmt.Sprintf("up to %d cached", capacity)
}
