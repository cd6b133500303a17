package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui"
	"github.com/custodia-labs/skillbot/internal/core/domain"
)

var (
	chatQuery   string
	chatSources bool
)

// isTerminal reports whether stdin is interactive. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Chat about an ingested document",
	Long: `Starts a conversation about one ingested skills document. The bot
answers only from the document and remembers earlier turns.

On a terminal this opens the interactive chat UI. With --query, or when
stdin is not a terminal, questions are read one per line and answers are
printed as plain text.

Controls (interactive):
  Enter    - Send
  PgUp/Dn  - Scroll
  Ctrl+S   - Toggle sources
  Esc      - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatQuery, "query", "q", "", "ask a single question and exit")
	chatCmd.Flags().BoolVar(&chatSources, "sources", false, "print retrieved passages after each answer")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return notConfigured(errChatNotConfigured)
	}
	documentID := args[0]

	if chatQuery != "" {
		return askOnce(cmd, documentID, chatQuery)
	}
	if isTerminal() {
		return runChatTUI(cmd, documentID)
	}
	return runChatLines(cmd, documentID, cmd.InOrStdin())
}

func askOnce(cmd *cobra.Command, documentID, query string) error {
	answer, err := chatService.Ask(cmd.Context(), documentID, query)
	if err != nil {
		return describeChatError(documentID, err)
	}
	printAnswer(cmd, answer)
	return nil
}

// runChatLines answers one question per input line. A failed turn is
// reported and the conversation continues.
func runChatLines(cmd *cobra.Command, documentID string, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		answer, err := chatService.Ask(cmd.Context(), documentID, query)
		if err != nil {
			err = describeChatError(documentID, err)
			if errors.Is(err, domain.ErrIndexNotReady) {
				return err
			}
			cmd.PrintErrf("error: %v\n", err)
			continue
		}
		printAnswer(cmd, answer)
	}
	return scanner.Err()
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if !chatSources {
		return
	}
	for _, p := range answer.Passages {
		cmd.Printf("  [%s %.3f] %s\n", p.Key, p.Score, strings.Join(strings.Fields(p.Text), " "))
	}
}

func describeChatError(documentID string, err error) error {
	if errors.Is(err, domain.ErrIndexNotReady) {
		return fmt.Errorf("document %s has no index, run 'skillbot ingest' first: %w", documentID, err)
	}
	return fmt.Errorf("chat failed: %w", err)
}

func runChatTUI(cmd *cobra.Command, documentID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Chat:     chatService,
		Document: documentService,
	}, documentID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
