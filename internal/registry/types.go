package registry

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProbeStatus is the presentation state of one plugin's last probe.
type ProbeStatus string

const (
	StatusPending    ProbeStatus = "pending"
	StatusRefreshing ProbeStatus = "refreshing"
	StatusOK         ProbeStatus = "ok"
	StatusFailed     ProbeStatus = "failed"
)

// Icon returns the Unicode icon for the status
func (s ProbeStatus) Icon() string {
	switch s {
	case StatusOK:
		return "🟢"
	case StatusRefreshing:
		return "🟡"
	case StatusFailed:
		return "🔴"
	default:
		return "⚪"
	}
}

// IconFallback returns ASCII fallback when Unicode is not supported
func (s ProbeStatus) IconFallback() string {
	switch s {
	case StatusOK:
		return "[OK]"
	case StatusRefreshing:
		return "[..]"
	case StatusFailed:
		return "[XX]"
	default:
		return "[??]"
	}
}

// Color returns the Lipgloss color for the status
func (s ProbeStatus) Color() lipgloss.Color {
	switch s {
	case StatusOK:
		return lipgloss.Color("#22c55e")
	case StatusRefreshing:
		return lipgloss.Color("#f59e0b")
	case StatusFailed:
		return lipgloss.Color("#ef4444")
	default:
		return lipgloss.Color("#9ca3af")
	}
}

// String returns the string representation of the status
func (s ProbeStatus) String() string {
	return string(s)
}

// SettingsFile is the JSON file format for persisted UI settings
type SettingsFile struct {
	Version         string    `json:"version"`
	PluginOrder     []string  `json:"pluginOrder"`
	DisabledPlugins []string  `json:"disabledPlugins"`
	LogLevel        string    `json:"logLevel,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
