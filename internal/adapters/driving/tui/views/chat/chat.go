// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/skillbot/internal/core/domain"
	"github.com/custodia-labs/skillbot/internal/core/ports/driving"
)

// Role identifies who wrote an entry.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleNotice
)

// Entry is one rendered line of the transcript.
type Entry struct {
	Role     Role
	Text     string
	Passages []domain.Passage
}

// chrome is the number of lines used by title, input and status bar.
const chrome = 6

// View is the chat transcript with a question input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	statusbar *status.Bar
	viewport  viewport.Model

	chat       driving.ChatService
	ctx        context.Context
	documentID string
	title      string

	entries     []Entry
	pending     bool
	showSources bool
	turns       int
	width       int
	height      int
}

// NewView creates a chat view bound to one document.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chat driving.ChatService,
	documentID string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		statusbar:  status.NewBar(s, km),
		viewport:   viewport.New(80, 24-chrome),
		chat:       chat,
		ctx:        context.Background(),
		documentID: documentID,
		title:      documentID,
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the context used for chat calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and restores any cached conversation.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadHistory())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.HistoryLoaded:
		v.handleHistory(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		query := v.input.Value()
		if query == "" || v.pending {
			return v, nil
		}
		v.input.Reset()
		v.pending = true
		v.statusbar.Clear()
		v.statusbar.SetState(status.StateThinking)
		v.entries = append(v.entries, Entry{Role: RoleUser, Text: query})
		v.refresh()
		return v, v.ask(query)

	case keymap.Matches(keyStr, v.keymap.Sources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs one turn off the UI goroutine.
func (v *View) ask(query string) tea.Cmd {
	chat := v.chat
	ctx := v.ctx
	id := v.documentID
	return func() tea.Msg {
		if chat == nil {
			return messages.AnswerReceived{Query: query, Err: errors.New("chat service not available")}
		}
		answer, err := chat.Ask(ctx, id, query)
		return messages.AnswerReceived{Query: query, Answer: answer, Err: err}
	}
}

func (v *View) loadHistory() tea.Cmd {
	chat := v.chat
	ctx := v.ctx
	id := v.documentID
	return func() tea.Msg {
		if chat == nil {
			return nil
		}
		view, err := chat.History(ctx, id)
		return messages.HistoryLoaded{View: view, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(describeError(msg.Err))
		v.entries = append(v.entries, Entry{Role: RoleNotice, Text: describeError(msg.Err)})
		v.refresh()
		return
	}

	v.turns++
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetTurns(v.turns)
	if msg.Answer.RewriteFellBack {
		v.statusbar.SetMessage("search used your exact words")
	}
	v.entries = append(v.entries, Entry{
		Role:     RoleAssistant,
		Text:     msg.Answer.Text,
		Passages: msg.Answer.Passages,
	})
	v.refresh()
}

func (v *View) handleHistory(msg messages.HistoryLoaded) {
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(describeError(msg.Err))
		return
	}

	turns := msg.View.Verbatim()
	restored := make([]Entry, 0, 2*len(turns)+1)
	if msg.View.Summary != "" {
		restored = append(restored, Entry{Role: RoleNotice, Text: msg.View.Summary})
	}
	for _, t := range turns {
		restored = append(restored,
			Entry{Role: RoleUser, Text: t.Query},
			Entry{Role: RoleAssistant, Text: t.Answer},
		)
	}

	v.turns = len(turns)
	v.statusbar.SetTurns(v.turns)
	v.entries = append(restored, v.entries...)
	v.refresh()
}

// describeError turns service errors into something a user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return "this document has not been ingested yet"
	case errors.Is(err, domain.ErrInvalidInput):
		return err.Error()
	case domain.IsRetryable(err):
		return "the AI provider failed, please try again"
	default:
		return err.Error()
	}
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("Ask anything about this person's skills.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 10))
	var b strings.Builder
	for i, e := range v.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.Role {
		case RoleUser:
			b.WriteString(v.styles.User.Render("شما"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(v.styles.Normal.Render(e.Text)))
		case RoleAssistant:
			b.WriteString(v.styles.Assistant.Render("دستیار"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(v.styles.Normal.Render(e.Text)))
			if v.showSources && len(e.Passages) > 0 {
				b.WriteString("\n")
				b.WriteString(v.renderPassages(e.Passages))
			}
		case RoleNotice:
			b.WriteString(wrap.Render(v.styles.Muted.Render(e.Text)))
		}
	}
	return b.String()
}

func (v *View) renderPassages(passages []domain.Passage) string {
	lines := make([]string, 0, len(passages))
	for _, p := range passages {
		snippet := []rune(strings.Join(strings.Fields(p.Text), " "))
		if len(snippet) > 80 {
			snippet = append(snippet[:80], '…')
		}
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("  [%s %.2f] %s", p.Key, p.Score, string(snippet))))
	}
	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	header := v.styles.Title.Render(v.title)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions resizes the transcript and input.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = max(height-chrome, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// SetTitle sets the header, usually the person's name.
func (v *View) SetTitle(title string) {
	if title != "" {
		v.title = title
	}
}

// Title returns the header text.
func (v *View) Title() string {
	return v.title
}

// Entries returns the transcript.
func (v *View) Entries() []Entry {
	return v.entries
}

// Pending reports whether a turn is in flight.
func (v *View) Pending() bool {
	return v.pending
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}
