package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

func plugins(ids ...string) []manifest.LoadedPlugin {
	out := make([]manifest.LoadedPlugin, len(ids))
	for i, id := range ids {
		out[i] = manifest.LoadedPlugin{Manifest: manifest.PluginManifest{ID: id, Name: "Plugin " + id}}
	}
	return out
}

func TestNewModelInitialisesState(t *testing.T) {
	m := NewModel("Test", plugins("a", "b", "a"))

	require.Equal(t, 2, m.TotalPlugins())
	require.Equal(t, []string{"a", "b"}, m.order)
	require.False(t, m.IsFinished())
	require.Zero(t, m.CompletedPlugins())
}

func TestModelInitReturnsTickCommand(t *testing.T) {
	m := NewModel("", nil)
	require.NotNil(t, m.Init())
}

func TestModelTracksOutputs(t *testing.T) {
	m := NewModel("", plugins("a", "b"))

	updated, _ := m.Update(ProbeStartMsg{ID: "a", Time: time.Now()})
	m = updated.(Model)
	require.True(t, m.entries["a"].running)

	updated, cmd := m.Update(ProbeCompleteMsg{Output: model.PluginOutput{ProviderID: "a"}, Duration: time.Second})
	m = updated.(Model)
	require.Nil(t, cmd)
	require.Equal(t, 1, m.CompletedPlugins())
	require.False(t, m.IsFinished())
	require.False(t, m.entries["a"].running)

	// A repeated report does not double count.
	updated, _ = m.Update(ProbeCompleteMsg{Output: model.PluginOutput{ProviderID: "a"}})
	m = updated.(Model)
	require.Equal(t, 1, m.CompletedPlugins())
}

func TestModelMarksFinishedAndQuits(t *testing.T) {
	m := NewModel("", plugins("a"))

	updated, cmd := m.Update(ProbeCompleteMsg{Output: model.ErrorOutput("a", "A", "", "boom")})
	m = updated.(Model)
	require.True(t, m.IsFinished())
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Len(t, m.Outputs(), 1)
}

func TestModelIgnoresUnknownPlugin(t *testing.T) {
	m := NewModel("", plugins("a"))

	updated, _ := m.Update(ProbeCompleteMsg{Output: model.PluginOutput{ProviderID: "zzz"}})
	m = updated.(Model)
	require.Zero(t, m.CompletedPlugins())
}
