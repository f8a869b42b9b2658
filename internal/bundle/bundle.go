// Package bundle installs the plugins shipped with the application into the
// user's plugins directory.
package bundle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/manifest"
)

// Action describes what Install did with one bundled plugin.
type Action string

const (
	ActionInstalled Action = "installed"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// Result is the outcome for one bundled plugin directory.
type Result struct {
	Dir     string
	ID      string
	Version string
	Action  Action
	Err     error
}

// Install copies every bundled plugin into pluginsDir when it is missing or
// its installed manifest version differs. Failures are per plugin.
func Install(bundledDir, pluginsDir string, log *logger.Logger) ([]Result, error) {
	log = log.WithComponent("bundle")

	entries, err := os.ReadDir(bundledDir)
	if err != nil {
		return nil, fmt.Errorf("read bundled plugins: %w", err)
	}
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create plugins directory: %w", err)
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		src := filepath.Join(bundledDir, entry.Name())
		dst := filepath.Join(pluginsDir, entry.Name())

		result := installOne(src, dst)
		result.Dir = entry.Name()
		if errors.Is(result.Err, manifest.ErrNoManifest) {
			log.Debug(fmt.Sprintf("skipping %s: no %s", src, manifest.FileName))
			continue
		}
		switch result.Action {
		case ActionFailed:
			log.WithPlugin(result.ID).Error(result.Err, fmt.Sprintf("failed to install bundled plugin %s", entry.Name()))
		case ActionUnchanged:
			log.WithPlugin(result.ID).Debug("bundled plugin already installed")
		default:
			log.WithPlugin(result.ID).Info(fmt.Sprintf("bundled plugin %s (version %s)", result.Action, result.Version))
		}
		results = append(results, result)
	}
	return results, nil
}

func installOne(src, dst string) Result {
	bundled, err := readManifest(src)
	if err != nil {
		return Result{Action: ActionFailed, Err: err}
	}
	result := Result{ID: bundled.ID, Version: bundled.Version}

	installed, err := readManifest(dst)
	switch {
	case err == nil && installed.Version == bundled.Version:
		result.Action = ActionUnchanged
		return result
	case err == nil:
		result.Action = ActionUpdated
	default:
		result.Action = ActionInstalled
	}

	if err := replaceDirectory(src, dst); err != nil {
		result.Action = ActionFailed
		result.Err = err
	}
	return result
}

func readManifest(dir string) (manifest.PluginManifest, error) {
	path := filepath.Join(dir, manifest.FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return manifest.PluginManifest{}, manifest.ErrNoManifest
	}
	if err != nil {
		return manifest.PluginManifest{}, err
	}
	return manifest.ParseManifest(path, data)
}

// replaceDirectory copies src next to dst and swaps it in, so a failed copy
// leaves the previous install untouched.
func replaceDirectory(src, dst string) error {
	staging := dst + ".installing"
	_ = os.RemoveAll(staging)

	if err := copyDirectory(src, staging); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := os.RemoveAll(dst); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("remove previous install: %w", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("activate install: %w", err)
	}
	return nil
}

func copyDirectory(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip the root source directory to avoid copying it as a subdirectory
		if path == src {
			return nil
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		dstPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(dstPath, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		return copyFile(path, dstPath, info.Mode().Perm())
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	// Ensure destination directory exists
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
