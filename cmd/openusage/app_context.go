package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/openusage/internal/bundle"
	"github.com/alexisbeaulieu97/openusage/internal/config"
	"github.com/alexisbeaulieu97/openusage/internal/engine"
	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/registry"
)

// AppContext bundles long-lived services created at startup.
type AppContext struct {
	Config   *config.Config
	Logger   *logger.Logger
	Settings *registry.Settings
	Registry *registry.Registry
	Engine   *engine.Engine
}

// newAppContext resolves configuration and builds every service a command
// needs. Log level precedence: --verbose, --log-level, saved settings, then
// config file and environment.
func newAppContext(cmd *cobra.Command, flags *rootFlags, operation string) (*AppContext, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, newCommandError(operation, "loading configuration", err, "Check the config file syntax or remove it to use defaults.")
	}
	if flags.pluginsDir != "" {
		cfg.PluginsDir = flags.pluginsDir
	}

	settings, err := registry.NewSettings(cfg.SettingsPath())
	if err != nil {
		return nil, newCommandError(operation, "loading settings", err, "Check settings file permissions and try again.")
	}

	level := cfg.LogLevel
	if saved := settings.LogLevel(); saved != "" {
		level = saved
	}
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	if flags.verbose {
		level = "debug"
	}
	cfg.LogLevel = level

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, newCommandError(operation, "validating configuration", err, "Fix the reported field and try again.")
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, HumanReadable: cfg.HumanLogs, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return nil, newCommandError(operation, "creating logger", err, "Use one of: trace, debug, info, warn, error.")
	}
	log = log.WithComponent("cli")

	if cfg.BundledPluginsDir != "" {
		results, err := bundle.Install(cfg.BundledPluginsDir, cfg.PluginsDir, log)
		if err != nil {
			log.Warn("bundled plugins not installed: " + err.Error())
		}
		for _, res := range results {
			if res.Action == bundle.ActionInstalled || res.Action == bundle.ActionUpdated {
				log.WithPlugin(res.ID).Info("bundled plugin " + string(res.Action))
			}
		}
	}

	reg := registry.NewRegistry(cfg.PluginsDir, log)
	count := reg.Reload()
	log.WithFields(map[string]any{"plugins_dir": cfg.PluginsDir, "count": count}).Debug("plugins loaded")

	eng := engine.New(engine.Options{
		AppDataDir: cfg.DataDir,
		AppVersion: version,
		Workers:    cfg.Workers,
		Logger:     log,
	})

	return &AppContext{
		Config:   cfg,
		Logger:   log,
		Settings: settings,
		Registry: reg,
		Engine:   eng,
	}, nil
}
