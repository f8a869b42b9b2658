package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/openusage/internal/tui/dashboard"
)

type dashboardOptions struct {
	refreshInterval time.Duration
}

func newDashboardCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &dashboardOptions{refreshInterval: defaultRefreshInterval}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Launch the interactive dashboard",
		Long:  `Launch the interactive TUI dashboard showing live usage from every enabled plugin.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboardCommand(cmd, rootFlags, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.refreshInterval, "refresh-interval", defaultRefreshInterval, "Re-probe interval (0 disables)")

	return cmd
}

func runDashboardCommand(cmd *cobra.Command, rootFlags *rootFlags, opts *dashboardOptions) error {
	if opts.refreshInterval < 0 {
		return newCommandError("launch dashboard", "validating flags", fmt.Errorf("refresh interval %s is negative", opts.refreshInterval), "Pass 0 to disable auto refresh.")
	}

	app, err := newAppContext(cmd, rootFlags, "launch dashboard")
	if err != nil {
		return err
	}

	plugins := app.Settings.Arrange(app.Registry.List())
	app.Logger.WithFields(map[string]any{"count": len(plugins)}).Info("launching dashboard")

	m := dashboard.NewModel(plugins, app.Engine, app.Settings, dashboard.Options{
		RefreshInterval: opts.refreshInterval,
		UseUnicode:      supportsUnicode(os.Stdout),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		app.Logger.Error(err, "dashboard execution failed")
		return newCommandError("launch dashboard", "running the terminal UI", err, "Run 'openusage probe' for non-interactive output.")
	}

	app.Logger.Info("dashboard closed")
	return nil
}
