package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/openusage/internal/registry"
)

var (
	brand   = lipgloss.Color("#8b5cf6")
	warning = lipgloss.Color("#f59e0b")
	danger  = lipgloss.Color("#ef4444")
	subtle  = lipgloss.Color("#6b7280")
	focus   = lipgloss.Color("#c4b5fd")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(brand).Padding(0, 2).MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(brand).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle).
			MarginBottom(1)

	itemStyle = lipgloss.NewStyle().Padding(0, 2)

	// The left border marks the cursor row.
	selectedItemStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(focus).
				Bold(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderLeft(true).
				BorderForeground(brand)

	mutedStyle = lipgloss.NewStyle().Foreground(subtle)

	footerStyle = lipgloss.NewStyle().
			Foreground(subtle).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(subtle).
			MarginTop(1)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fef2f2")).
				Background(danger).
				Bold(true).
				Padding(0, 2).
				MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(1, 2).
			MarginTop(1)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true).
			Align(lipgloss.Center).
			Padding(3, 0)

	spinnerStyle = lipgloss.NewStyle().Foreground(brand)
)

// GetStatusStyle returns the style for a probe status
func GetStatusStyle(status registry.ProbeStatus) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(status.Color()).Bold(status == registry.StatusFailed)
}

// ApplyMaxWidth caps the row and frame styles to the terminal width.
func ApplyMaxWidth(width int) {
	itemStyle = itemStyle.MaxWidth(width - 4)
	selectedItemStyle = selectedItemStyle.MaxWidth(width - 4)
	headerStyle = headerStyle.Width(width - 2)
	footerStyle = footerStyle.Width(width - 2)
}
