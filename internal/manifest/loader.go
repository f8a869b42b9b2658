package manifest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	usageerrors "github.com/alexisbeaulieu97/openusage/pkg/errors"
)

// IconMediaType is the mime type icons are embedded with.
const IconMediaType = "image/svg+xml"

var (
	// ErrNoManifest marks a directory that is not a plugin bundle at all.
	ErrNoManifest = errors.New("no plugin.json")
	// ErrEscapesRoot marks a path that resolves outside its plugin directory.
	ErrEscapesRoot = errors.New("path escapes plugin directory")
)

// LoadPlugins scans the immediate subdirectories of pluginsDir and returns
// every valid bundle sorted by id. Invalid bundles are logged and skipped.
func LoadPlugins(pluginsDir string, log *logger.Logger) []LoadedPlugin {
	log = log.WithComponent("manifest")

	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		log.Error(err, fmt.Sprintf("cannot read plugins directory %s", pluginsDir))
		return nil
	}

	plugins := make([]LoadedPlugin, 0, len(entries))
	seen := make(map[string]string, len(entries))

	for _, entry := range entries {
		dir := filepath.Join(pluginsDir, entry.Name())
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		plugin, warnings, err := LoadPlugin(dir)
		if errors.Is(err, ErrNoManifest) {
			log.Debug(fmt.Sprintf("skipping %s: no %s", dir, FileName))
			continue
		}
		if err != nil {
			log.Error(err, fmt.Sprintf("skipping plugin at %s", dir))
			continue
		}

		pluginLog := log.WithPlugin(plugin.ID())
		for _, warning := range warnings {
			pluginLog.Warn(warning)
		}

		if first, dup := seen[plugin.ID()]; dup {
			pluginLog.Warn(fmt.Sprintf("duplicate plugin id, keeping %s and ignoring %s", first, dir))
			continue
		}
		seen[plugin.ID()] = dir
		plugins = append(plugins, plugin)
	}

	sort.SliceStable(plugins, func(i, j int) bool {
		return plugins[i].ID() < plugins[j].ID()
	})

	log.Debug(fmt.Sprintf("loaded %d plugins from %s", len(plugins), pluginsDir))
	return plugins
}

// LoadPlugin reads and validates one bundle directory. Normalization
// warnings are returned rather than treated as failures.
func LoadPlugin(root string) (LoadedPlugin, []string, error) {
	manifestPath := filepath.Join(root, FileName)
	data, err := os.ReadFile(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadedPlugin{}, nil, ErrNoManifest
	}
	if err != nil {
		return LoadedPlugin{}, nil, usageerrors.NewParseError(manifestPath, 0, err)
	}

	manifest, err := ParseManifest(manifestPath, data)
	if err != nil {
		return LoadedPlugin{}, nil, err
	}

	warnings := manifest.NormalizePrimary()

	entryPath, err := ResolveWithin(root, manifest.Entry, "entry")
	if err != nil {
		return LoadedPlugin{}, nil, usageerrors.NewPluginError(manifest.ID, err)
	}
	script, err := os.ReadFile(entryPath)
	if err != nil {
		return LoadedPlugin{}, nil, usageerrors.NewPluginError(manifest.ID, fmt.Errorf("read entry: %w", err))
	}

	iconPath, err := ResolveWithin(root, manifest.Icon, "icon")
	if err != nil {
		return LoadedPlugin{}, nil, usageerrors.NewPluginError(manifest.ID, err)
	}
	icon, err := os.ReadFile(iconPath)
	if err != nil {
		return LoadedPlugin{}, nil, usageerrors.NewPluginError(manifest.ID, fmt.Errorf("read icon: %w", err))
	}

	return LoadedPlugin{
		Manifest:    manifest,
		Root:        root,
		EntryScript: string(script),
		IconURL:     IconDataURL(icon),
	}, warnings, nil
}

// ParseManifest decodes and structurally validates manifest bytes.
func ParseManifest(path string, data []byte) (PluginManifest, error) {
	var manifest PluginManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return PluginManifest{}, usageerrors.NewParseError(path, lineOf(data, err), err)
	}
	if err := Validate(&manifest); err != nil {
		return PluginManifest{}, err
	}
	return manifest, nil
}

// ResolveWithin resolves rel against root and returns the canonical path,
// failing unless it is a regular file inside root's canonical path.
func ResolveWithin(root, rel, field string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", usageerrors.NewValidationError(field, "path is empty", nil)
	}
	if filepath.IsAbs(rel) {
		return "", usageerrors.NewValidationError(field, "path must be relative", nil)
	}

	canonicalRoot, err := canonicalize(root)
	if err != nil {
		return "", usageerrors.NewValidationError(field, "cannot resolve plugin directory", err)
	}
	canonical, err := canonicalize(filepath.Join(canonicalRoot, rel))
	if err != nil {
		return "", usageerrors.NewValidationError(field, fmt.Sprintf("cannot resolve %s", rel), err)
	}

	relative, err := filepath.Rel(canonicalRoot, canonical)
	if err != nil || relative == "." || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", usageerrors.NewValidationError(field, fmt.Sprintf("%s: %v", rel, ErrEscapesRoot), ErrEscapesRoot)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", usageerrors.NewValidationError(field, fmt.Sprintf("cannot stat %s", rel), err)
	}
	if !info.Mode().IsRegular() {
		return "", usageerrors.NewValidationError(field, fmt.Sprintf("%s is not a regular file", rel), nil)
	}

	return canonical, nil
}

// IconDataURL embeds icon bytes as a base64 data URL.
func IconDataURL(data []byte) string {
	return "data:" + IconMediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func lineOf(data []byte, err error) int {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return strings.Count(string(data[:offset]), "\n") + 1
}
