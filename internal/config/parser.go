package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	usageerrors "github.com/alexisbeaulieu97/openusage/pkg/errors"
)

// Environment variables that override file values.
const (
	EnvDataDir           = "OPENUSAGE_DATA_DIR"
	EnvPluginsDir        = "OPENUSAGE_PLUGINS_DIR"
	EnvBundledPluginsDir = "OPENUSAGE_BUNDLED_PLUGINS_DIR"
	EnvLogLevel          = "OPENUSAGE_LOG_LEVEL"
	EnvWorkers           = "OPENUSAGE_WORKERS"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Load reads the config at path, or the default path when empty. A missing
// file yields defaults. Environment overrides apply before validation.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg, err := ParseConfig(path)
	if err == nil {
		return cfg, nil
	}
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg = Defaults()
	if err := finish(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig loads a configuration file from disk, validates it, and returns the resulting model.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, usageerrors.NewParseError(path, 0, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, usageerrors.NewParseError(path, extractLine(err), err)
	}

	if err := finish(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finish(cfg *Config, lookup func(string) (string, bool)) error {
	if err := ApplyEnv(cfg, lookup); err != nil {
		return err
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.PluginsDir = expandHome(cfg.PluginsDir)
	cfg.BundledPluginsDir = expandHome(cfg.BundledPluginsDir)
	return ValidateConfig(cfg)
}

// ApplyEnv overlays OPENUSAGE_* variables onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvPluginsDir); ok && v != "" {
		cfg.PluginsDir = v
	}
	if v, ok := lookup(EnvBundledPluginsDir); ok {
		cfg.BundledPluginsDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return usageerrors.NewValidationError(EnvWorkers, fmt.Sprintf("not an integer: %q", v), err)
		}
		cfg.Workers = n
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
