// Package styles holds the lipgloss styles of the chat TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette names the colours a theme is built from.
type Palette struct {
	Accent lipgloss.Color // assistant label, titles
	Asker  lipgloss.Color // user label
	Text   lipgloss.Color
	Subtle lipgloss.Color
	Warn   lipgloss.Color
	Danger lipgloss.Color
	Frame  lipgloss.Color
	Bar    lipgloss.Color
}

// Dark is the default palette, tuned for dark terminals.
var Dark = Palette{
	Accent: "#7C3AED",
	Asker:  "#06B6D4",
	Text:   "#CDD6F4",
	Subtle: "#6C7086",
	Warn:   "#F9E2AF",
	Danger: "#F38BA8",
	Frame:  "#45475A",
	Bar:    "#181825",
}

// Styles are the rendered styles, one per element of the screen.
type Styles struct {
	Title      lipgloss.Style
	User       lipgloss.Style
	Assistant  lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style // citations, hints
	Warning    lipgloss.Style
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// New builds Styles from p.
func New(p Palette) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		Title:     fg(p.Accent).Bold(true),
		User:      fg(p.Asker).Bold(true),
		Assistant: fg(p.Accent).Bold(true),
		Normal:    fg(p.Text),
		Muted:     fg(p.Subtle),
		Warning:   fg(p.Warn),
		Error:     fg(p.Danger),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: fg(p.Subtle).Background(p.Bar).Padding(0, 1),
	}
}

// DefaultStyles returns New(Dark).
func DefaultStyles() *Styles {
	return New(Dark)
}
