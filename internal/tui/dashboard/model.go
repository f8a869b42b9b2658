package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
	"github.com/alexisbeaulieu97/openusage/internal/registry"
	"github.com/alexisbeaulieu97/openusage/internal/tui/components"
)

// Options tunes the dashboard.
type Options struct {
	// RefreshInterval re-probes every plugin periodically; zero disables it.
	RefreshInterval time.Duration
	UseUnicode      bool
}

// Model is the main dashboard model
type Model struct {
	// Core data
	plugins  []manifest.LoadedPlugin
	outputs  map[string]model.PluginOutput
	statuses map[string]registry.ProbeStatus
	probedAt map[string]time.Time
	service  ProbeService
	settings SettingsStore

	// UI state
	viewMode   ViewMode
	cursor     int
	selectedID string

	// Component state
	spinner spinner.Model
	lines   components.Lines
	bar     components.Bar

	// Operation state
	loading   map[string]bool
	cancels   map[string]context.CancelFunc
	showError bool
	errorMsg  string

	// Refresh state
	refreshing      bool
	refreshProgress int
	refreshTotal    int
	cancelRefresh   context.CancelFunc

	// Confirmation state
	confirmAction string
	confirmPlugin string

	// Dimensions
	width  int
	height int

	// Configuration
	refreshInterval time.Duration
	useUnicode      bool
}

// NewModel creates a new dashboard model. plugins must already be arranged
// in display order. settings may be nil, in which case reordering and hiding
// are not persisted.
func NewModel(plugins []manifest.LoadedPlugin, svc ProbeService, settings SettingsStore, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		plugins:         append([]manifest.LoadedPlugin(nil), plugins...),
		outputs:         make(map[string]model.PluginOutput),
		statuses:        make(map[string]registry.ProbeStatus),
		probedAt:        make(map[string]time.Time),
		service:         svc,
		settings:        settings,
		viewMode:        ViewList,
		spinner:         s,
		lines:           components.NewLines(components.DefaultBarWidth),
		bar:             components.NewBar(20),
		loading:         make(map[string]bool),
		cancels:         make(map[string]context.CancelFunc),
		width:           80,
		height:          24,
		refreshInterval: opts.RefreshInterval,
		useUnicode:      opts.UseUnicode,
	}

	for _, p := range m.plugins {
		m.statuses[p.ID()] = registry.StatusPending
	}

	return m
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	if len(m.plugins) == 0 {
		return m.spinner.Tick
	}
	return tea.Batch(m.spinner.Tick, requestRefreshCmd())
}

// Helper Methods

// startRefresh probes every plugin. A refresh already in flight is left alone.
func (m Model) startRefresh() (Model, tea.Cmd) {
	if m.refreshing || len(m.plugins) == 0 || m.service == nil {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRefresh = cancel
	m.refreshing = true
	m.refreshProgress = 0
	m.refreshTotal = len(m.plugins)

	cmds := []tea.Cmd{m.spinner.Tick}
	for _, p := range m.plugins {
		m.loading[p.ID()] = true
		m.statuses[p.ID()] = registry.StatusRefreshing
		cmds = append(cmds, probeCmd(ctx, p, m.service, true))
	}

	return m, tea.Batch(cmds...)
}

// startProbe probes a single plugin outside a refresh-all run.
func (m Model) startProbe(id string) (Model, tea.Cmd) {
	plugin, _, ok := m.GetPluginByID(id)
	if !ok || m.loading[id] || m.service == nil {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[id] = cancel
	m.loading[id] = true
	m.statuses[id] = registry.StatusRefreshing

	return m, tea.Batch(m.spinner.Tick, probeCmd(ctx, plugin, m.service, false))
}

// recordOutput stores a finished probe and derives the plugin status.
func (m *Model) recordOutput(id string, output model.PluginOutput, at time.Time) {
	m.outputs[id] = output
	m.probedAt[id] = at
	if output.Failed() {
		m.statuses[id] = registry.StatusFailed
	} else {
		m.statuses[id] = registry.StatusOK
	}
}

// cancelAll stops every in-flight probe.
func (m *Model) cancelAll() {
	if m.cancelRefresh != nil {
		m.cancelRefresh()
		m.cancelRefresh = nil
	}
	for id, cancel := range m.cancels {
		cancel()
		delete(m.cancels, id)
	}
}

// CountByStatus returns counts of plugins in each status
func (m *Model) CountByStatus() map[registry.ProbeStatus]int {
	counts := make(map[registry.ProbeStatus]int)
	for _, p := range m.plugins {
		counts[m.Status(p.ID())]++
	}
	return counts
}

// Status returns the probe status of a plugin
func (m *Model) Status(id string) registry.ProbeStatus {
	if s, ok := m.statuses[id]; ok {
		return s
	}
	return registry.StatusPending
}

// Output returns the last output of a plugin
func (m *Model) Output(id string) (model.PluginOutput, bool) {
	out, ok := m.outputs[id]
	return out, ok
}

// Outputs returns the last outputs in display order; plugins never probed
// are skipped.
func (m *Model) Outputs() []model.PluginOutput {
	outs := make([]model.PluginOutput, 0, len(m.outputs))
	for _, p := range m.plugins {
		if out, ok := m.outputs[p.ID()]; ok {
			outs = append(outs, out)
		}
	}
	return outs
}

// Plugins returns the plugins in display order
func (m *Model) Plugins() []manifest.LoadedPlugin {
	return append([]manifest.LoadedPlugin(nil), m.plugins...)
}

// GetSelectedPlugin returns the plugin under the cursor
func (m *Model) GetSelectedPlugin() (manifest.LoadedPlugin, bool) {
	if m.cursor < 0 || m.cursor >= len(m.plugins) {
		return manifest.LoadedPlugin{}, false
	}
	return m.plugins[m.cursor], true
}

// GetPluginByID returns a plugin by its ID
func (m *Model) GetPluginByID(id string) (manifest.LoadedPlugin, int, bool) {
	for i, p := range m.plugins {
		if p.ID() == id {
			return p, i, true
		}
	}
	return manifest.LoadedPlugin{}, -1, false
}

// MoveCursorUp moves cursor up with wrapping
func (m *Model) MoveCursorUp() {
	if len(m.plugins) == 0 {
		return
	}
	m.cursor--
	if m.cursor < 0 {
		m.cursor = len(m.plugins) - 1
	}
}

// MoveCursorDown moves cursor down with wrapping
func (m *Model) MoveCursorDown() {
	if len(m.plugins) == 0 {
		return
	}
	m.cursor++
	if m.cursor >= len(m.plugins) {
		m.cursor = 0
	}
}

// SetCursor sets cursor to specific index
func (m *Model) SetCursor(index int) {
	if index >= 0 && index < len(m.plugins) {
		m.cursor = index
	}
}

// MoveSelected swaps the plugin under the cursor with its neighbour and
// reports whether anything moved. The cursor follows the plugin.
func (m *Model) MoveSelected(delta int) bool {
	target := m.cursor + delta
	if m.cursor < 0 || m.cursor >= len(m.plugins) || target < 0 || target >= len(m.plugins) {
		return false
	}
	plugins := append([]manifest.LoadedPlugin(nil), m.plugins...)
	plugins[m.cursor], plugins[target] = plugins[target], plugins[m.cursor]
	m.plugins = plugins
	m.cursor = target
	return true
}

// HidePlugin removes a plugin from the dashboard.
func (m *Model) HidePlugin(id string) bool {
	_, index, ok := m.GetPluginByID(id)
	if !ok {
		return false
	}
	if cancel, ok := m.cancels[id]; ok {
		cancel()
		delete(m.cancels, id)
	}
	plugins := make([]manifest.LoadedPlugin, 0, len(m.plugins)-1)
	plugins = append(plugins, m.plugins[:index]...)
	m.plugins = append(plugins, m.plugins[index+1:]...)
	delete(m.outputs, id)
	delete(m.statuses, id)
	delete(m.probedAt, id)
	delete(m.loading, id)
	if m.cursor >= len(m.plugins) && m.cursor > 0 {
		m.cursor = len(m.plugins) - 1
	}
	return true
}

// order returns the current plugin ids in display order.
func (m *Model) order() []string {
	ids := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		ids[i] = p.ID()
	}
	return ids
}

// IsLoading checks if a plugin has a probe in flight
func (m *Model) IsLoading(id string) bool {
	return m.loading[id]
}

// GetViewMode returns the current view mode
func (m *Model) GetViewMode() ViewMode {
	return m.viewMode
}

// IsRefreshing returns whether a refresh-all is in progress
func (m *Model) IsRefreshing() bool {
	return m.refreshing
}

// GetRefreshTotal returns the number of plugins being refreshed
func (m *Model) GetRefreshTotal() int {
	return m.refreshTotal
}
