// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run creates the player TUI program for a deck
func Run(d Deck, backend string) *tea.Program {
	return tea.NewProgram(NewModel(d, backend), tea.WithAltScreen())
}

// UpdateRemote reports remote server state to a running program
func UpdateRemote(p *tea.Program, addr string, clients int) {
	if p == nil {
		return
	}
	p.Send(StatusMsg{RemoteAddr: addr, Clients: &clients})
}
