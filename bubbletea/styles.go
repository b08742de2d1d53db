package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/concierge"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg      lipgloss.Style
	Note         lipgloss.Style
	ToolCall     lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Muted        lipgloss.Style
	Accent       lipgloss.Style
	ToolCallBg   lipgloss.Style
	ToolResultBg lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t concierge.Theme) Styles {
	return Styles{
		UserMsg:      lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		Note:         lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Italic(true),
		ToolCall:     lipgloss.NewStyle().Foreground(ansiColor(t.ToolCall)),
		Error:        lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:      lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:        lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:       lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		ToolCallBg:   lipgloss.NewStyle().PaddingLeft(1),
		ToolResultBg: lipgloss.NewStyle().Foreground(ansiColor(t.ToolResult)).PaddingLeft(1),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
