package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case ProbeStartMsg:
		if e, ok := m.entries[msg.ID]; ok && !e.done {
			e.running = true
		}
		return m, nil
	case ProbeCompleteMsg:
		e, ok := m.entries[msg.Output.ProviderID]
		if !ok {
			return m, nil
		}
		if !e.done {
			m.completed++
		}
		e.running = false
		e.done = true
		e.output = msg.Output
		e.duration = msg.Duration
		m.markFinishedIfComplete()
		if m.finished {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
