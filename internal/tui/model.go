// Package tui renders the progress of a one-shot probe run.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// ProbeStartMsg indicates a plugin probe has started.
type ProbeStartMsg struct {
	ID   string
	Time time.Time
}

// ProbeCompleteMsg reports that a plugin probe has finished.
type ProbeCompleteMsg struct {
	Output   model.PluginOutput
	Duration time.Duration
}

type tickMsg struct{}

type entry struct {
	plugin   manifest.LoadedPlugin
	running  bool
	done     bool
	output   model.PluginOutput
	duration time.Duration
}

// Model contains the Bubbletea state for a probe run.
type Model struct {
	title     string
	entries   map[string]*entry
	order     []string
	total     int
	completed int
	finished  bool
	cancelled bool
}

// NewModel constructs a run model for the given plugins.
func NewModel(title string, plugins []manifest.LoadedPlugin) Model {
	m := Model{
		title:   title,
		entries: make(map[string]*entry, len(plugins)),
		order:   make([]string, 0, len(plugins)),
	}
	for _, p := range plugins {
		if _, exists := m.entries[p.ID()]; exists {
			continue
		}
		m.entries[p.ID()] = &entry{plugin: p}
		m.order = append(m.order, p.ID())
		m.total++
	}
	return m
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalPlugins returns the number of plugins tracked by the model.
func (m Model) TotalPlugins() int {
	return m.total
}

// CompletedPlugins returns the number of finished probes.
func (m Model) CompletedPlugins() int {
	return m.completed
}

// IsFinished reports whether every probe has reported or the run was cancelled.
func (m Model) IsFinished() bool {
	return m.finished
}

// Outputs returns finished outputs in plugin order.
func (m Model) Outputs() []model.PluginOutput {
	outs := make([]model.PluginOutput, 0, m.completed)
	for _, id := range m.order {
		if e := m.entries[id]; e.done {
			outs = append(outs, e.output)
		}
	}
	return outs
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
