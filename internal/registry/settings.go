package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
)

// Settings persists plugin order, disabled plugins and log level between
// sessions.
type Settings struct {
	path      string
	mu        sync.RWMutex
	version   string
	order     []string
	disabled  map[string]struct{}
	logLevel  string
	updatedAt time.Time
}

// NewSettings creates a Settings instance and loads it from disk
func NewSettings(path string) (*Settings, error) {
	s := &Settings{
		path:     path,
		version:  "1.0",
		disabled: make(map[string]struct{}),
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := s.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return s, nil
}

// Load reads the settings from disk
func (s *Settings) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var file SettingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}

	if file.Version != "" {
		s.version = file.Version
	}
	s.order = file.PluginOrder
	s.disabled = make(map[string]struct{}, len(file.DisabledPlugins))
	for _, id := range file.DisabledPlugins {
		s.disabled[id] = struct{}{}
	}
	s.logLevel = file.LogLevel
	s.updatedAt = file.UpdatedAt

	return nil
}

// Save writes the settings to disk atomically
func (s *Settings) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatedAt = time.Now().UTC()
	file := SettingsFile{
		Version:         s.version,
		PluginOrder:     append([]string{}, s.order...),
		DisabledPlugins: s.disabledLocked(),
		LogLevel:        s.logLevel,
		UpdatedAt:       s.updatedAt,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	// Write to temporary file first
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up temp file on failure
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// UpdatedAt returns when the settings were last saved.
func (s *Settings) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Order returns the saved plugin order.
func (s *Settings) Order() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// SetOrder replaces the saved plugin order, dropping duplicates.
func (s *Settings) SetOrder(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	s.order = order
}

// Disabled reports whether a plugin is switched off.
func (s *Settings) Disabled(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.disabled[id]
	return ok
}

// DisabledIDs returns the disabled plugin ids sorted.
func (s *Settings) DisabledIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disabledLocked()
}

// SetDisabled switches a plugin off or back on.
func (s *Settings) SetDisabled(id string, disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if disabled {
		s.disabled[id] = struct{}{}
		return
	}
	delete(s.disabled, id)
}

// LogLevel returns the saved log level, empty when unset.
func (s *Settings) LogLevel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logLevel
}

// SetLogLevel stores the log level.
func (s *Settings) SetLogLevel(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logLevel = level
}

// Arrange drops disabled plugins and orders the rest: ids in the saved order
// first, then any others by id.
func (s *Settings) Arrange(plugins []manifest.LoadedPlugin) []manifest.LoadedPlugin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rank := make(map[string]int, len(s.order))
	for i, id := range s.order {
		rank[id] = i
	}

	arranged := make([]manifest.LoadedPlugin, 0, len(plugins))
	for _, p := range plugins {
		if _, off := s.disabled[p.ID()]; off {
			continue
		}
		arranged = append(arranged, p)
	}

	sort.SliceStable(arranged, func(i, j int) bool {
		ri, iok := rank[arranged[i].ID()]
		rj, jok := rank[arranged[j].ID()]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return arranged[i].ID() < arranged[j].ID()
		}
	})
	return arranged
}

func (s *Settings) disabledLocked() []string {
	ids := make([]string, 0, len(s.disabled))
	for id := range s.disabled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
