package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAppContextInstallsBundledPlugins(t *testing.T) {
	env := setupEnv(t)
	bundled := t.TempDir()
	writePlugin(t, bundled, "alpha", `[]`)
	t.Setenv("OPENUSAGE_BUNDLED_PLUGINS_DIR", bundled)

	cmd := &cobra.Command{}
	app, err := newAppContext(cmd, &rootFlags{}, "test")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(env.pluginsDir, "alpha", "plugin.json"))
	require.NoError(t, err)
	_, err = app.Registry.Get("alpha")
	require.NoError(t, err)
}

func TestAppContextLogLevelPrecedence(t *testing.T) {
	setupEnv(t)

	app, err := newAppContext(&cobra.Command{}, &rootFlags{}, "test")
	require.NoError(t, err)
	require.Equal(t, "error", app.Config.LogLevel)

	app.Settings.SetLogLevel("warn")
	require.NoError(t, app.Settings.Save())

	app, err = newAppContext(&cobra.Command{}, &rootFlags{}, "test")
	require.NoError(t, err)
	require.Equal(t, "warn", app.Config.LogLevel)

	app, err = newAppContext(&cobra.Command{}, &rootFlags{logLevel: "info"}, "test")
	require.NoError(t, err)
	require.Equal(t, "info", app.Config.LogLevel)

	app, err = newAppContext(&cobra.Command{}, &rootFlags{logLevel: "info", verbose: true}, "test")
	require.NoError(t, err)
	require.Equal(t, "debug", app.Config.LogLevel)
}

func TestAppContextInvalidConfigFile(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [\n"), 0o644))

	_, err := newAppContext(&cobra.Command{}, &rootFlags{configPath: path}, "list")
	require.Error(t, err)

	var cmdErr *commandError
	require.True(t, errors.As(err, &cmdErr))
	require.Contains(t, err.Error(), "Failed to list: loading configuration")
}
