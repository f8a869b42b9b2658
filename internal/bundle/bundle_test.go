package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
)

func writeBundled(t *testing.T, dir, id, version, script string) {
	t.Helper()

	root := filepath.Join(dir, id)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	manifest := `{"schemaVersion":1,"id":"` + id + `","name":"` + id + `","version":"` + version +
		`","entry":"plugin.js","icon":"assets/icon.svg","lines":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.json"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.js"), []byte(script), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "icon.svg"), []byte("<svg/>"), 0o644))
}

func actions(results []Result) map[string]Action {
	out := make(map[string]Action, len(results))
	for _, r := range results {
		out[r.ID] = r.Action
	}
	return out
}

func TestInstallCopiesMissingPlugins(t *testing.T) {
	t.Parallel()

	bundled := t.TempDir()
	target := filepath.Join(t.TempDir(), "plugins")
	writeBundled(t, bundled, "claude", "1.0.0", "// v1")
	require.NoError(t, os.MkdirAll(filepath.Join(bundled, "not-a-plugin"), 0o755))

	results, err := Install(bundled, target, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, map[string]Action{"claude": ActionInstalled}, actions(results))

	script, err := os.ReadFile(filepath.Join(target, "claude", "plugin.js"))
	require.NoError(t, err)
	assert.Equal(t, "// v1", string(script))
	assert.FileExists(t, filepath.Join(target, "claude", "assets", "icon.svg"))
}

func TestInstallUpdatesOnVersionChangeOnly(t *testing.T) {
	t.Parallel()

	bundled := t.TempDir()
	target := t.TempDir()
	writeBundled(t, bundled, "codex", "1.0.0", "// v1")

	_, err := Install(bundled, target, logger.Nop())
	require.NoError(t, err)

	// a local edit survives while the version is unchanged
	local := filepath.Join(target, "codex", "plugin.js")
	require.NoError(t, os.WriteFile(local, []byte("// local"), 0o644))
	results, err := Install(bundled, target, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, actions(results)["codex"])
	data, _ := os.ReadFile(local)
	assert.Equal(t, "// local", string(data))

	writeBundled(t, bundled, "codex", "1.1.0", "// v2")
	results, err = Install(bundled, target, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, actions(results)["codex"])
	data, _ = os.ReadFile(local)
	assert.Equal(t, "// v2", string(data))
	assert.NoDirExists(t, filepath.Join(target, "codex.installing"))
}

func TestInstallReportsInvalidManifest(t *testing.T) {
	t.Parallel()

	bundled := t.TempDir()
	root := filepath.Join(bundled, "broken")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plugin.json"), []byte("{"), 0o644))

	results, err := Install(bundled, t.TempDir(), logger.Nop())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ActionFailed, results[0].Action)
	assert.Equal(t, "broken", results[0].Dir)
	assert.Error(t, results[0].Err)
}

func TestInstallMissingBundledDir(t *testing.T) {
	t.Parallel()

	_, err := Install(filepath.Join(t.TempDir(), "absent"), t.TempDir(), logger.Nop())
	require.Error(t, err)
}
