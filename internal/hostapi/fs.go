package hostapi

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath replaces a leading "~" or "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func newFSAPI() FSAPI {
	return FSAPI{
		Exists: func(path string) bool {
			_, err := os.Stat(ExpandPath(path))
			return err == nil
		},
		ReadText: func(path string) (string, error) {
			data, err := os.ReadFile(ExpandPath(path))
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
		WriteText: func(path, content string) error {
			return os.WriteFile(ExpandPath(path), []byte(content), 0o644)
		},
	}
}
