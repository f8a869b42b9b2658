package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/openusage/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("OpenUsage • %s", m.heading())))

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.completed) / float64(m.total)
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", m.completed, m.total))
	bar := components.NewBar(components.DefaultBarWidth).ViewFraction(ratio)
	sections = append(sections, sectionStyle.Render("Progress"), lipgloss.JoinHorizontal(lipgloss.Left, label, " ", bar))

	if len(m.order) > 0 {
		sections = append(sections, sectionStyle.Render("Plugins"), m.renderEntries())
	}

	summary := components.NewSummary(components.Summarize(m.total, m.Outputs())).View()
	if m.cancelled {
		summary = strings.TrimSpace(summary + "\nProbe run cancelled")
	}
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderEntries() string {
	lines := make([]string, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		line := fmt.Sprintf(" %s %s", statusIcon(e), e.plugin.Name())
		if badge, failed := e.output.ErrorBadge(); e.done && failed {
			line = fmt.Sprintf("%s: %s", line, components.Badge(badge))
		}
		if e.duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, e.duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) heading() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return "Probe"
}

// statusIcon returns the glyph for an entry's probe state.
func statusIcon(e *entry) string {
	switch {
	case e.done && e.output.Failed():
		return failureStyle.Render("✗")
	case e.done:
		return successStyle.Render("✓")
	case e.running:
		return runningStyle.Render("⏳")
	default:
		return pendingStyle.Render("…")
	}
}
