package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/tui/dashboard"
)

type settingsOptions struct {
	order    []string
	disable  []string
	enable   []string
	logLevel string
}

func (o *settingsOptions) changed() bool {
	return len(o.order) > 0 || len(o.disable) > 0 || len(o.enable) > 0 || o.logLevel != ""
}

func newSettingsCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &settingsOptions{}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change plugin order, visibility and log level",
		Long: `Show the saved settings, or change them with flags.

Examples:
  openusage settings --order claude,codex,cursor
  openusage settings --disable mock --enable battery
  openusage settings --set-log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, rootFlags, "update settings")
			if err != nil {
				return err
			}
			return runSettings(cmd, app, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.order, "order", nil, "Plugin IDs in display order")
	cmd.Flags().StringSliceVar(&opts.disable, "disable", nil, "Plugin IDs to hide")
	cmd.Flags().StringSliceVar(&opts.enable, "enable", nil, "Plugin IDs to show again")
	cmd.Flags().StringVar(&opts.logLevel, "set-log-level", "", "Saved log level (trace, debug, info, warn, error)")

	return cmd
}

func runSettings(cmd *cobra.Command, app *AppContext, opts *settingsOptions) error {
	if !opts.changed() {
		return renderSettings(cmd, app)
	}

	if opts.logLevel != "" {
		if _, err := logger.ParseLevel(opts.logLevel); err != nil {
			return newCommandError("update settings", fmt.Sprintf("parsing log level %q", opts.logLevel), err, "Use one of: trace, debug, info, warn, error.")
		}
		app.Settings.SetLogLevel(strings.ToLower(opts.logLevel))
	}

	for _, id := range append(append(append([]string{}, opts.order...), opts.disable...), opts.enable...) {
		if _, err := app.Registry.Get(id); err != nil {
			app.Logger.WithPlugin(id).Warn("setting stored for a plugin that is not installed")
		}
	}

	if len(opts.order) > 0 {
		app.Settings.SetOrder(opts.order)
	}
	for _, id := range opts.disable {
		app.Settings.SetDisabled(id, true)
	}
	for _, id := range opts.enable {
		app.Settings.SetDisabled(id, false)
	}

	if err := app.Settings.Save(); err != nil {
		return newCommandError("update settings", "saving settings", err, "Check settings file permissions and try again.")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return renderSettings(cmd, app)
}

func renderSettings(cmd *cobra.Command, app *AppContext) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Settings file: %s\n", app.Config.SettingsPath())
	fmt.Fprintf(out, "Plugin order:  %s\n", joinOrNone(app.Settings.Order()))
	fmt.Fprintf(out, "Disabled:      %s\n", joinOrNone(app.Settings.DisabledIDs()))
	fmt.Fprintf(out, "Log level:     %s\n", valueOrFallback(app.Settings.LogLevel(), "(config default)"))
	fmt.Fprintf(out, "Updated:       %s\n", dashboard.FormatLastRun(app.Settings.UpdatedAt()))
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
