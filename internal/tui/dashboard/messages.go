package dashboard

import (
	"time"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// ViewMode determines which screen to render
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewHelp
	ViewConfirm
)

// Navigation Messages

// PluginSelectedMsg indicates a plugin was selected
type PluginSelectedMsg struct {
	Plugin manifest.LoadedPlugin
}

// BackToListMsg requests return to list view
type BackToListMsg struct{}

// Probe Messages

// RefreshRequestedMsg asks the model to probe every plugin
type RefreshRequestedMsg struct{}

// AutoRefreshMsg fires when the refresh interval elapses
type AutoRefreshMsg struct{}

// PluginProbedMsg carries one finished probe
type PluginProbedMsg struct {
	PluginID string
	Output   model.PluginOutput
	At       time.Time
	// Batch is set when the probe belongs to a refresh-all run.
	Batch bool
}

// ProbeCancelledMsg indicates a probe finished after its run was cancelled
type ProbeCancelledMsg struct {
	PluginID string
	Batch    bool
}

// RefreshCompleteMsg indicates every plugin in a refresh-all run reported
type RefreshCompleteMsg struct{}

// Settings Messages

// SettingsSavedMsg indicates the settings file was written
type SettingsSavedMsg struct{}

// Error Messages

// ErrorMsg indicates a general error occurred
type ErrorMsg struct {
	Message string
}

// ClearErrorMsg requests error banner dismissal
type ClearErrorMsg struct{}
