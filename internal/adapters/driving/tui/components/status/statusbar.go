// Package status renders the one-line bar under the chat input.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/styles"
)

// State is what the chat is doing right now.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar shows the state (or a notice) on the left and key hints on the right.
// The turn count survives Clear.
type Bar struct {
	st     *styles.Styles
	hints  string
	state  State
	notice string
	turns  int
	width  int
}

// NewBar uses the default styles and keys for nil arguments.
func NewBar(st *styles.Styles, km *keymap.KeyMap) *Bar {
	if st == nil {
		st = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	var hints []string
	for _, b := range km.ShortHelp() {
		hints = append(hints, b.Help().Key+": "+b.Help().Desc)
	}
	return &Bar{st: st, hints: strings.Join(hints, " | "), state: StateReady, width: 80}
}

func (b *Bar) View() string {
	left := b.left()
	right := b.st.Muted.Render(b.hints)
	gap := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right))
	return b.st.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	switch {
	case b.state == StateThinking:
		return b.st.Muted.Render("Thinking...")
	case b.state == StateError && b.notice != "":
		return b.st.Error.Render("Error: " + b.notice)
	case b.state == StateError:
		return b.st.Error.Render("Error")
	case b.notice != "":
		return b.st.Warning.Render(b.notice)
	case b.turns > 0:
		return b.st.Normal.Render(fmt.Sprintf("%d turns", b.turns))
	default:
		return b.st.Muted.Render("Ready")
	}
}

func (b *Bar) State() State          { return b.state }
func (b *Bar) SetState(s State)      { b.state = s }
func (b *Bar) SetMessage(msg string) { b.notice = msg }
func (b *Bar) SetTurns(n int)        { b.turns = n }
func (b *Bar) SetWidth(w int)        { b.width = w }

// Clear returns to the ready state and drops any notice.
func (b *Bar) Clear() {
	b.state, b.notice = StateReady, ""
}
