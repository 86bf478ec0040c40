package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/pwalczyk/trickle"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Prompt    lipgloss.Style
	Reasoning lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t trickle.Theme) Styles {
	return Styles{
		Prompt:    lipgloss.NewStyle().Foreground(ansiColor(t.Prompt)).Bold(true),
		Reasoning: lipgloss.NewStyle().Foreground(ansiColor(t.Reasoning)).Faint(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:   lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
