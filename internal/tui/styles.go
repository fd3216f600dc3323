package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B1B8C7"))
	linkStyle   = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#A78BFA"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E6EAF2"))
)
