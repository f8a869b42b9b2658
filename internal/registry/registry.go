package registry

import (
	"fmt"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/manifest"
)

// Registry holds the loaded plugin set for the process. Reload swaps in a
// new snapshot; readers always see a complete one.
type Registry struct {
	dir     string
	log     *logger.Logger
	mu      sync.RWMutex
	plugins []manifest.LoadedPlugin
}

// NewRegistry loads every plugin under dir.
func NewRegistry(dir string, log *logger.Logger) *Registry {
	r := &Registry{dir: dir, log: log}
	r.Reload()
	return r
}

// Dir returns the plugins directory the registry scans.
func (r *Registry) Dir() string {
	return r.dir
}

// Reload rescans the plugins directory and returns the number of plugins loaded.
func (r *Registry) Reload() int {
	plugins := manifest.LoadPlugins(r.dir, r.log)

	r.mu.Lock()
	r.plugins = plugins
	r.mu.Unlock()

	return len(plugins)
}

// List returns all loaded plugins ordered by id
func (r *Registry) List() []manifest.LoadedPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Return a copy to prevent external modification
	result := make([]manifest.LoadedPlugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Get retrieves a plugin by ID
func (r *Registry) Get(id string) (manifest.LoadedPlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.ID() == id {
			return p, nil
		}
	}

	return manifest.LoadedPlugin{}, fmt.Errorf("plugin not found: %s", id)
}

// Select returns the plugins with the given ids in the given order. Unknown
// ids are an error.
func (r *Registry) Select(ids []string) ([]manifest.LoadedPlugin, error) {
	selected := make([]manifest.LoadedPlugin, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		selected = append(selected, p)
	}
	return selected, nil
}

// Suggest returns up to limit plugin ids that fuzzily match query, best match
// first.
func (r *Registry) Suggest(query string, limit int) []string {
	plugins := r.List()
	ids := make([]string, len(plugins))
	for i, p := range plugins {
		ids[i] = p.ID()
	}

	matches := fuzzy.Find(query, ids)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	suggestions := make([]string, len(matches))
	for i, match := range matches {
		suggestions[i] = match.Str
	}
	return suggestions
}
