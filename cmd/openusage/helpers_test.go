package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dataDir    string
	pluginsDir string
}

// setupEnv isolates config, data and plugin directories under t.TempDir.
func setupEnv(t *testing.T) testEnv {
	t.Helper()

	home := t.TempDir()
	env := testEnv{
		dataDir:    filepath.Join(home, "data"),
		pluginsDir: filepath.Join(home, "plugins"),
	}
	require.NoError(t, os.MkdirAll(env.pluginsDir, 0o755))

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("OPENUSAGE_DATA_DIR", env.dataDir)
	t.Setenv("OPENUSAGE_PLUGINS_DIR", env.pluginsDir)
	t.Setenv("OPENUSAGE_BUNDLED_PLUGINS_DIR", "")
	t.Setenv("OPENUSAGE_LOG_LEVEL", "error")
	t.Setenv("OPENUSAGE_WORKERS", "")

	return env
}

// writePlugin creates a bundle whose probe returns the given lines literal.
func writePlugin(t *testing.T, dir, id, lines string) {
	t.Helper()

	root := filepath.Join(dir, id)
	require.NoError(t, os.MkdirAll(root, 0o755))

	manifest := fmt.Sprintf(`{
  "schemaVersion": 1,
  "id": %q,
  "name": "Plugin %s",
  "version": "1.0.0",
  "entry": "plugin.js",
  "icon": "icon.svg",
  "brandColor": null,
  "lines": [{ "type": "progress", "label": "Session", "scope": "overview", "primary": true }]
}`, id, id)
	script := fmt.Sprintf("globalThis.__openusage_plugin = { probe: function(ctx) { return { lines: %s } } }", lines)

	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.json"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.js"), []byte(script), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "icon.svg"), []byte("<svg/>"), 0o644))
}

func executeCommand(args ...string) (stdout, stderr string, err error) {
	root := newRootCmd()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}
