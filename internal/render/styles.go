// Package render formats dashboard state as terminal text.
package render

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#2ca02c")
	colorTitle  = lipgloss.Color("#1f77b4")
	colorMuted  = lipgloss.Color("#808080")
	colorWarn   = lipgloss.Color("#ff7f0e")
	colorError  = lipgloss.Color("#e53935")
)

// Styles groups the lipgloss styles shared by tables and views
type Styles struct {
	Title    lipgloss.Style
	Bold     lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Warn     lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
}

// DefaultStyles returns the standard palette
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		Bold:     lipgloss.NewStyle().Bold(true),
		Body:     lipgloss.NewStyle(),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Accent:   lipgloss.NewStyle().Foreground(colorAccent),
		Warn:     lipgloss.NewStyle().Foreground(colorWarn),
		Error:    lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
	}
}
