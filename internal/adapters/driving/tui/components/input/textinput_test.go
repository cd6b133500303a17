package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skillbot/internal/adapters/driving/tui/styles"
)

func TestNewQueryInput(t *testing.T) {
	in := NewQueryInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.Equal(t, "", in.Value())
	assert.True(t, in.Focused())
}

func TestNewQueryInput_NilStyles(t *testing.T) {
	in := NewQueryInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestQueryInput_Init(t *testing.T) {
	assert.NotNil(t, NewQueryInput(nil).Init())
}

func TestQueryInput_TypesPersian(t *testing.T) {
	in := NewQueryInput(nil)

	in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("سلام")})

	assert.Equal(t, "سلام", in.Value())
}

func TestQueryInput_ValueIsTrimmed(t *testing.T) {
	in := NewQueryInput(nil)
	in.SetValue("  سلام  ")

	assert.Equal(t, "سلام", in.Value())
}

func TestQueryInput_FocusBlurReset(t *testing.T) {
	in := NewQueryInput(nil)
	in.SetValue("x")

	in.Blur()
	assert.False(t, in.Focused())
	in.Focus()
	assert.True(t, in.Focused())

	in.Reset()
	assert.Equal(t, "", in.Value())
}

func TestQueryInput_SetWidth(t *testing.T) {
	in := NewQueryInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 92, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}
