package main

import (
	"time"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	pluginsDir string
	logLevel   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	dashOpts := &dashboardOptions{refreshInterval: defaultRefreshInterval}

	cmd := &cobra.Command{
		Use:           "openusage",
		Short:         "OpenUsage tracks AI tool usage through sandboxed provider plugins",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Without a subcommand, launch the dashboard
			return runDashboardCommand(cmd, flags, dashOpts)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&flags.pluginsDir, "plugins-dir", "", "Override the plugins directory")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().DurationVar(&dashOpts.refreshInterval, "refresh-interval", defaultRefreshInterval, "Re-probe interval for the dashboard (0 disables)")

	cmd.AddCommand(newDashboardCmd(flags))
	cmd.AddCommand(newProbeCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newSettingsCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

const defaultRefreshInterval = 5 * time.Minute
