package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestUpdateHandlesCtrlC(t *testing.T) {
	m := NewModel("", plugins("a"))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	require.True(t, m.cancelled)
	require.True(t, m.IsFinished())
	require.NotNil(t, cmd)
}

func TestUpdateHandlesTeaMessages(t *testing.T) {
	m := NewModel("", plugins("a"))

	updated, cmd := m.Update(tickMsg{})
	require.Nil(t, cmd)

	updated, _ = updated.(Model).Update(tea.QuitMsg{})
	require.True(t, updated.(Model).IsFinished())
}
