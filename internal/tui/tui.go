package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the session screen until the user quits.
func Run(controller Controller, export ExportFunc) error {
	p := tea.NewProgram(NewModel(controller, export), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
