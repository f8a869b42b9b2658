package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
	"github.com/alexisbeaulieu97/openusage/internal/registry"
	"github.com/alexisbeaulieu97/openusage/internal/tui/components"
)

// View renders the current model state
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.viewMode {
	case ViewDetail:
		return m.renderDetailView()
	case ViewHelp:
		return m.renderHelpView()
	case ViewConfirm:
		return m.renderConfirmView()
	default:
		return m.renderListView()
	}
}

// renderListView renders the main plugin list view
func (m Model) renderListView() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	content.WriteString(m.renderPluginList())
	content.WriteString("\n")

	content.WriteString(m.renderFooter())

	return content.String()
}

func (m Model) statusIcon(status registry.ProbeStatus) string {
	if m.useUnicode {
		return status.Icon()
	}
	return status.IconFallback()
}

// renderHeader renders the title with a status summary
func (m Model) renderHeader() string {
	title := titleStyle.Render("OpenUsage")

	counts := m.CountByStatus()
	summary := fmt.Sprintf(
		"%s %d  %s %d  %s %d",
		m.statusIcon(registry.StatusOK), counts[registry.StatusOK],
		m.statusIcon(registry.StatusFailed), counts[registry.StatusFailed],
		m.statusIcon(registry.StatusPending), counts[registry.StatusPending],
	)

	if m.refreshing {
		summary += fmt.Sprintf("  %s Refreshing %d/%d",
			m.spinner.View(),
			m.refreshProgress,
			m.refreshTotal,
		)
	}

	return headerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, summary))
}

// renderPluginList renders the visible window of plugins
func (m Model) renderPluginList() string {
	if len(m.plugins) == 0 {
		return m.renderEmptyState()
	}

	// Each item takes two rows.
	visible := (m.height - 10) / 2
	if visible < 1 {
		visible = 1
	}

	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.plugins) {
		end = len(m.plugins)
	}

	var items []string
	if start > 0 {
		items = append(items, mutedStyle.Render("▲ More above"))
	}
	for i := start; i < end; i++ {
		items = append(items, m.renderPluginItem(i, i == m.cursor))
	}
	if end < len(m.plugins) {
		items = append(items, mutedStyle.Render("▼ More below"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// renderPluginItem renders one plugin with its primary bar or headline
func (m Model) renderPluginItem(index int, selected bool) string {
	p := m.plugins[index]
	status := m.Status(p.ID())

	icon := m.statusIcon(status)
	if m.IsLoading(p.ID()) {
		icon = m.spinner.View()
	}

	line1 := fmt.Sprintf("%s %d. %s %s",
		GetStatusStyle(status).Render(icon),
		index+1,
		lipgloss.NewStyle().Bold(true).Render(p.Name()),
		mutedStyle.Render("v"+p.Manifest.Version),
	)
	line2 := "   " + m.headline(p)

	content := lipgloss.JoinVertical(lipgloss.Left, line1, line2)
	if selected {
		return selectedItemStyle.Render(content)
	}
	return itemStyle.Render(content)
}

// headline summarises a plugin's last output in one row.
func (m Model) headline(p manifest.LoadedPlugin) string {
	out, ok := m.outputs[p.ID()]
	if !ok {
		return mutedStyle.Render("Not probed yet")
	}

	if badge, failed := out.ErrorBadge(); failed {
		return components.Badge(badge)
	}

	if fraction, ok := components.PrimaryFraction(p, out); ok {
		primary, _ := p.PrimaryLine()
		line, _ := out.Progress(primary.Label)
		return fmt.Sprintf("%s %s %s",
			primary.Label,
			m.bar.Colored(brandColor(p, line)).ViewFraction(fraction),
			mutedStyle.Render(fmt.Sprintf("%.0f%%", fraction*100)),
		)
	}

	if len(out.Lines) > 0 {
		return m.lines.Line(out.Lines[0])
	}
	return mutedStyle.Render("No data")
}

// brandColor picks the line color, then the manifest brand color.
func brandColor(p manifest.LoadedPlugin, line model.ProgressLine) string {
	if line.Color != "" {
		return line.Color
	}
	if p.Manifest.BrandColor != nil {
		return *p.Manifest.BrandColor
	}
	return ""
}

// renderEmptyState renders the empty state when no plugins are loaded
func (m Model) renderEmptyState() string {
	message := `No plugins loaded.

Drop a plugin bundle into the plugins directory, then run:
  openusage list`

	return emptyStateStyle.Render(message)
}

// renderFooter renders the footer with keyboard shortcuts
func (m Model) renderFooter() string {
	hints := []string{
		"↑/↓: navigate",
		"enter: details",
		"r: refresh",
		"?: help",
	}
	if m.showError {
		hints = append(hints, "x: dismiss error")
	}
	hints = append(hints, "q: quit")

	return footerStyle.Render(strings.Join(hints, "  •  "))
}

// renderErrorBanner renders an error message banner
func (m Model) renderErrorBanner() string {
	return errorBannerStyle.Render(m.errorMsg)
}

// FormatLastRun formats a timestamp relative to now.
func FormatLastRun(t time.Time) string {
	if t.IsZero() {
		return "Never"
	}
	if time.Since(t) < time.Minute {
		return "Just now"
	}
	return humanize.Time(t)
}

// renderDetailView renders every line of the selected plugin
func (m Model) renderDetailView() string {
	selected, _, ok := m.GetPluginByID(m.selectedID)
	if !ok {
		return "Plugin not found"
	}

	var content strings.Builder

	content.WriteString(titleStyle.Render(selected.Name()))
	content.WriteString("\n")

	if m.showError {
		content.WriteString(m.renderErrorBanner())
		content.WriteString("\n")
	}

	status := m.Status(selected.ID())
	content.WriteString(fmt.Sprintf("%s Status: %s\n",
		GetStatusStyle(status).Render(m.statusIcon(status)),
		lipgloss.NewStyle().Bold(true).Render(status.String())))

	content.WriteString(fmt.Sprintf("  ID: %s\n", selected.ID()))
	content.WriteString(fmt.Sprintf("  Version: %s\n", selected.Manifest.Version))
	content.WriteString(fmt.Sprintf("  Path: %s\n", selected.Root))
	content.WriteString(fmt.Sprintf("  Last probed: %s\n", FormatLastRun(m.probedAt[selected.ID()])))

	var body string
	if out, ok := m.outputs[selected.ID()]; ok && len(out.Lines) > 0 {
		body = m.lines.View(out.Lines)
	} else {
		body = mutedStyle.Render("No data yet")
	}
	content.WriteString(sectionStyle.Render(body))
	content.WriteString("\n")

	if m.IsLoading(selected.ID()) {
		content.WriteString(spinnerStyle.Render(m.spinner.View() + " probing..."))
		content.WriteString("\n")
	}

	hints := []string{
		"r: refresh",
		"esc: back",
		"?: help",
		"q: quit",
	}
	footer := footerStyle.Render(strings.Join(hints, "  •  "))

	return lipgloss.JoinVertical(lipgloss.Left, content.String(), footer)
}

// renderHelpView renders the help overlay
func (m Model) renderHelpView() string {
	title := titleStyle.Render("OpenUsage Help")

	helpContent := fmt.Sprintf(`
List View:
  ↑/↓, j/k      Navigate up/down
  1-9           Jump to plugin by number
  J/K           Move plugin down/up (saved)
  Enter         View plugin details
  r             Refresh all plugins
  h             Hide plugin (saved)
  ?             Toggle this help
  q, Ctrl+C     Quit application

Detail View:
  r             Refresh this plugin
  Esc           Back to list

Status Indicators:
  %-4s OK          Last probe reported data
  %-4s Refreshing  Probe in progress
  %-4s Failed      Last probe returned an error
  %-4s Pending     Not probed yet
`,
		m.statusIcon(registry.StatusOK),
		m.statusIcon(registry.StatusRefreshing),
		m.statusIcon(registry.StatusFailed),
		m.statusIcon(registry.StatusPending),
	)

	helpText := lipgloss.NewStyle().Padding(1, 2).Render(helpContent)
	footer := footerStyle.Render("Press ? or Esc to close")

	return lipgloss.JoinVertical(lipgloss.Left, title, helpText, footer)
}

// renderConfirmView renders a confirmation dialog
func (m Model) renderConfirmView() string {
	message := "Confirm action?"
	if m.confirmAction == "hide" {
		name := m.confirmPlugin
		if p, _, ok := m.GetPluginByID(m.confirmPlugin); ok {
			name = p.Name()
		}
		message = fmt.Sprintf("Hide '%s'?\n\nRe-enable with:\nopenusage settings --enable %s", name, m.confirmPlugin)
	}

	dialogStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(warning).
		Padding(1, 2).
		Width(50).
		Align(lipgloss.Center)

	dialog := dialogStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Center,
			message,
			"",
			mutedStyle.Render("y = Yes    n = No    Esc = Cancel"),
		),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(dialog)
}
