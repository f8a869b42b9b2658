package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8b5cf6"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	summaryStyle = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("#6b7280"))

	// Status icons share the dashboard palette.
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Faint(true)
)
