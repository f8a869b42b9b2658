package manifest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	usageerrors "github.com/alexisbeaulieu97/openusage/pkg/errors"
)

const testIcon = `<svg xmlns="http://www.w3.org/2000/svg"/>`

func writeBundle(t *testing.T, dir string, manifest map[string]any) string {
	t.Helper()

	root := filepath.Join(dir, manifest["id"].(string))
	require.NoError(t, os.MkdirAll(root, 0o755))

	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.js"), []byte("globalThis.__openusage_plugin = {probe: function(){ return {lines: []} }}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "icon.svg"), []byte(testIcon), 0o644))
	return root
}

func baseManifest(id string) map[string]any {
	return map[string]any{
		"schemaVersion": 1,
		"id":            id,
		"name":          strings.ToUpper(id[:1]) + id[1:],
		"version":       "0.1.0",
		"entry":         "plugin.js",
		"icon":          "icon.svg",
		"brandColor":    nil,
		"lines": []map[string]any{
			{"type": "progress", "label": "Session", "scope": "overview", "primary": true},
		},
	}
}

func testLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Level: "debug", Writer: buf})
	require.NoError(t, err)
	return log, buf
}

func TestLoadPluginsSortsByID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// directory names deliberately sort differently from ids
	for dirName, id := range map[string]string{"a-dir": "zeta", "m-dir": "alpha", "z-dir": "mid"} {
		manifest := baseManifest(id)
		root := writeBundle(t, dir, manifest)
		require.NoError(t, os.Rename(root, filepath.Join(dir, dirName)))
	}

	log, _ := testLogger(t)
	plugins := LoadPlugins(dir, log)

	ids := make([]string, 0, len(plugins))
	for _, p := range plugins {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestLoadPluginsEmbedsScriptAndIcon(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := writeBundle(t, dir, baseManifest("battery"))

	plugins := LoadPlugins(dir, logger.Nop())
	require.Len(t, plugins, 1)

	p := plugins[0]
	assert.Equal(t, "Battery", p.Name())
	assert.Equal(t, root, p.Root)
	assert.Contains(t, p.EntryScript, "__openusage_plugin")
	require.True(t, strings.HasPrefix(p.IconURL, "data:image/svg+xml;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(p.IconURL, "data:image/svg+xml;base64,"))
	require.NoError(t, err)
	assert.Equal(t, testIcon, string(decoded))
}

func TestLoadPluginsRejectsTraversalButKeepsSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBundle(t, dir, baseManifest("good"))

	evil := baseManifest("evil")
	evil["entry"] = "../good/plugin.js"
	writeBundle(t, dir, evil)

	log, buf := testLogger(t)
	plugins := LoadPlugins(dir, log)

	require.Len(t, plugins, 1)
	assert.Equal(t, "good", plugins[0].ID())
	assert.Contains(t, buf.String(), "escapes plugin directory")
}

func TestLoadPluginRejectsSymlinkEscape(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := filepath.Join(t.TempDir(), "outside.js")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	manifest := baseManifest("linked")
	manifest["entry"] = "link.js"
	root := writeBundle(t, dir, manifest)
	if err := os.Symlink(outside, filepath.Join(root, "link.js")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, _, err := LoadPlugin(root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEscapesRoot))
}

func TestLoadPluginValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"empty entry", func(m map[string]any) { m["entry"] = "  " }, "entry"},
		{"absolute entry", func(m map[string]any) { m["entry"] = "/etc/passwd" }, "entry"},
		{"missing entry file", func(m map[string]any) { m["entry"] = "nope.js" }, "entry"},
		{"entry is a directory", func(m map[string]any) { m["entry"] = "." }, "entry"},
		{"missing icon", func(m map[string]any) { m["icon"] = "missing.svg" }, "icon"},
		{"icon escapes", func(m map[string]any) { m["icon"] = "../../icon.svg" }, "icon"},
		{"bad id", func(m map[string]any) { m["id"] = "../x" }, "id"},
		{"missing name", func(m map[string]any) { delete(m, "name") }, "name"},
		{"line without type", func(m map[string]any) { m["lines"] = []map[string]any{{"label": "x"}} }, "lines[0].type"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			manifest := baseManifest("subject")
			root := writeBundle(t, dir, manifest)
			tc.mutate(manifest)
			data, err := json.Marshal(manifest)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(root, FileName), data, 0o644))

			_, _, err = LoadPlugin(root)
			require.Error(t, err)

			var validationErr *usageerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestLoadPluginMalformedJSONReportsLine(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("{\n  \"id\": \"x\",\n  oops\n}"), 0o644))

	_, _, err := LoadPlugin(root)
	var parseErr *usageerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
}

func TestLoadPluginsSkipsNonBundles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBundle(t, dir, baseManifest("real"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))

	plugins := LoadPlugins(dir, logger.Nop())
	require.Len(t, plugins, 1)
	assert.Equal(t, "real", plugins[0].ID())
}

func TestLoadPluginsKeepsFirstDuplicate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := baseManifest("dup")
	first["name"] = "First"
	root := writeBundle(t, dir, first)
	require.NoError(t, os.Rename(root, filepath.Join(dir, "a")))

	second := baseManifest("dup")
	second["name"] = "Second"
	root = writeBundle(t, dir, second)
	require.NoError(t, os.Rename(root, filepath.Join(dir, "b")))

	log, buf := testLogger(t)
	plugins := LoadPlugins(dir, log)
	require.Len(t, plugins, 1)
	assert.Equal(t, "First", plugins[0].Name())
	assert.Contains(t, buf.String(), "duplicate plugin id")
}

func TestLoadPluginsNormalizesPrimary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := baseManifest("multi")
	manifest["lines"] = []map[string]any{
		{"type": "badge", "label": "Plan", "scope": "overview", "primary": true},
		{"type": "progress", "label": "Session", "scope": "overview", "primary": true},
		{"type": "progress", "label": "Weekly", "scope": "overview", "primary": true},
	}
	writeBundle(t, dir, manifest)

	log, buf := testLogger(t)
	plugins := LoadPlugins(dir, log)
	require.Len(t, plugins, 1)

	lines := plugins[0].Manifest.Lines
	assert.False(t, lines[0].Primary)
	assert.True(t, lines[1].Primary)
	assert.False(t, lines[2].Primary)
	assert.Contains(t, buf.String(), "extra primary ignored")
}

func TestLoadPluginsMissingDirectory(t *testing.T) {
	t.Parallel()

	plugins := LoadPlugins(filepath.Join(t.TempDir(), "absent"), logger.Nop())
	assert.Empty(t, plugins)
}
