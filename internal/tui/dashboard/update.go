package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/openusage/internal/registry"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// System messages
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		ApplyMaxWidth(m.width)

		const minWidth = 80
		const minHeight = 24
		if m.width < minWidth || m.height < minHeight {
			m.showError = true
			m.errorMsg = fmt.Sprintf("Terminal too small (%dx%d). Minimum size: %dx%d",
				m.width, m.height, minWidth, minHeight)
		} else if m.showError && strings.HasPrefix(m.errorMsg, "Terminal too small") {
			m.showError = false
			m.errorMsg = ""
		}

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.anyLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// Probe messages
	case RefreshRequestedMsg:
		return m.startRefresh()

	case AutoRefreshMsg:
		if m.refreshing {
			return m, nil
		}
		return m.startRefresh()

	case PluginProbedMsg:
		delete(m.loading, msg.PluginID)
		delete(m.cancels, msg.PluginID)
		if _, _, ok := m.GetPluginByID(msg.PluginID); ok {
			m.recordOutput(msg.PluginID, msg.Output, msg.At)
		}
		return m.countBatch(msg.Batch)

	case ProbeCancelledMsg:
		delete(m.loading, msg.PluginID)
		delete(m.cancels, msg.PluginID)
		if _, ok := m.outputs[msg.PluginID]; !ok {
			if _, _, known := m.GetPluginByID(msg.PluginID); known {
				m.statuses[msg.PluginID] = registry.StatusPending
			}
		}
		return m.countBatch(msg.Batch)

	case RefreshCompleteMsg:
		m.refreshing = false
		m.refreshProgress = 0
		m.refreshTotal = 0
		m.cancelRefresh = nil
		return m, autoRefreshCmd(m.refreshInterval)

	// Navigation messages
	case PluginSelectedMsg:
		m.selectedID = msg.Plugin.ID()
		m.viewMode = ViewDetail
		return m, nil

	case BackToListMsg:
		m.viewMode = ViewList
		m.selectedID = ""
		return m, nil

	case SettingsSavedMsg:
		return m, nil

	// Error messages
	case ErrorMsg:
		m.showError = true
		m.errorMsg = msg.Message
		return m, nil

	case ClearErrorMsg:
		m.showError = false
		m.errorMsg = ""
		return m, nil
	}

	return m, nil
}

// countBatch advances refresh-all progress and emits completion once every
// plugin has reported.
func (m Model) countBatch(batch bool) (tea.Model, tea.Cmd) {
	if !batch || !m.refreshing {
		return m, nil
	}
	m.refreshProgress++
	if m.refreshProgress >= m.refreshTotal {
		return m, func() tea.Msg {
			return RefreshCompleteMsg{}
		}
	}
	return m, nil
}

func (m Model) anyLoading() bool {
	return m.refreshing || len(m.loading) > 0
}

// handleKeyPress handles keyboard input based on current view mode
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	case ViewConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m, nil
	}
}

// handleListKeys handles keys in list view
func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "x", "esc":
		if m.showError {
			m.showError = false
			m.errorMsg = ""
		}
		return m, nil

	case "q", "ctrl+c":
		m.cancelAll()
		return m, tea.Quit

	// Navigation
	case "up", "k":
		m.MoveCursorUp()
		return m, nil

	case "down", "j":
		m.MoveCursorDown()
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		index := int(msg.String()[0] - '1')
		if index < len(m.plugins) {
			m.SetCursor(index)
		}
		return m, nil

	// Reordering
	case "K", "shift+up":
		return m.reorder(-1)

	case "J", "shift+down":
		return m.reorder(1)

	case "enter", " ":
		if selected, ok := m.GetSelectedPlugin(); ok {
			m.selectedID = selected.ID()
			m.viewMode = ViewDetail
		}
		return m, nil

	case "r":
		return m.startRefresh()

	case "h":
		if selected, ok := m.GetSelectedPlugin(); ok {
			m.confirmAction = "hide"
			m.confirmPlugin = selected.ID()
			m.viewMode = ViewConfirm
		}
		return m, nil

	case "?":
		m.viewMode = ViewHelp
		return m, nil
	}

	return m, nil
}

// reorder moves the selected plugin and persists the new order.
func (m Model) reorder(delta int) (tea.Model, tea.Cmd) {
	if !m.MoveSelected(delta) || m.settings == nil {
		return m, nil
	}
	m.settings.SetOrder(m.order())
	return m, saveSettingsCmd(m.settings)
}

// handleDetailKeys handles keys in detail view
func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "x":
		if m.showError {
			m.showError = false
			m.errorMsg = ""
		}
		return m, nil

	case "q", "ctrl+c":
		m.cancelAll()
		return m, tea.Quit

	case "esc", "backspace":
		m.viewMode = ViewList
		m.selectedID = ""
		return m, nil

	case "r":
		return m.startProbe(m.selectedID)

	case "?":
		m.viewMode = ViewHelp
		return m, nil
	}
	return m, nil
}

// handleHelpKeys handles keys in help view
func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		if m.selectedID != "" {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
		return m, nil
	}
	return m, nil
}

// handleConfirmKeys handles keys in confirmation dialog
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.confirmAction
		pluginID := m.confirmPlugin
		m.confirmAction = ""
		m.confirmPlugin = ""
		m.viewMode = ViewList
		m.selectedID = ""

		if action != "hide" || !m.HidePlugin(pluginID) || m.settings == nil {
			return m, nil
		}
		m.settings.SetDisabled(pluginID, true)
		return m, saveSettingsCmd(m.settings)

	case "n", "N", "esc":
		m.confirmAction = ""
		m.confirmPlugin = ""
		if m.selectedID != "" {
			m.viewMode = ViewDetail
		} else {
			m.viewMode = ViewList
		}
		return m, nil
	}
	return m, nil
}
