package dashboard

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
)

// requestRefreshCmd asks for a refresh-all on the next update
func requestRefreshCmd() tea.Cmd {
	return func() tea.Msg {
		return RefreshRequestedMsg{}
	}
}

// probeCmd probes one plugin asynchronously
func probeCmd(ctx context.Context, plugin manifest.LoadedPlugin, svc ProbeService, batch bool) tea.Cmd {
	return func() tea.Msg {
		output := svc.Probe(ctx, plugin)
		if ctx.Err() != nil {
			return ProbeCancelledMsg{PluginID: plugin.ID(), Batch: batch}
		}
		return PluginProbedMsg{
			PluginID: plugin.ID(),
			Output:   output,
			At:       time.Now(),
			Batch:    batch,
		}
	}
}

// autoRefreshCmd schedules the next refresh-all
func autoRefreshCmd(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return AutoRefreshMsg{}
	})
}

// saveSettingsCmd persists settings changes
func saveSettingsCmd(store SettingsStore) tea.Cmd {
	return func() tea.Msg {
		if err := store.Save(); err != nil {
			return ErrorMsg{Message: fmt.Sprintf("Failed to save settings: %v", err)}
		}
		return SettingsSavedMsg{}
	}
}
