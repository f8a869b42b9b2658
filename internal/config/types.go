package config

import (
	"os"
	"path/filepath"
)

const (
	appDirName   = "openusage"
	fileName     = "config.yaml"
	settingsName = "settings.json"
)

// Config is the host application configuration.
type Config struct {
	DataDir           string `yaml:"data_dir" validate:"required"`
	PluginsDir        string `yaml:"plugins_dir" validate:"required"`
	BundledPluginsDir string `yaml:"bundled_plugins_dir,omitempty" validate:"omitempty,nefield=PluginsDir"`
	LogLevel          string `yaml:"log_level" validate:"required,log_level"`
	HumanLogs         bool   `yaml:"human_logs"`
	Workers           int    `yaml:"workers,omitempty" validate:"min=0,max=64"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	dataDir := filepath.Join(userConfigDir(), appDirName)
	return &Config{
		DataDir:    dataDir,
		PluginsDir: filepath.Join(dataDir, "plugins"),
		LogLevel:   "info",
		HumanLogs:  true,
	}
}

// DefaultPath is where the config file is looked up when none is given.
func DefaultPath() string {
	return filepath.Join(userConfigDir(), appDirName, fileName)
}

// SettingsPath is the persisted UI settings file inside the data dir.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, settingsName)
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config")
	}
	return "."
}
