// Package manifest discovers plugin bundles on disk and turns them into
// validated, self-contained records ready for probing.
package manifest

// FileName is the manifest file every plugin directory must contain.
const FileName = "plugin.json"

// PluginManifest is the parsed plugin.json of one bundle.
type PluginManifest struct {
	SchemaVersion int            `json:"schemaVersion"`
	ID            string         `json:"id" validate:"required,plugin_id"`
	Name          string         `json:"name" validate:"required"`
	Version       string         `json:"version" validate:"required"`
	Entry         string         `json:"entry"`
	Icon          string         `json:"icon" validate:"required"`
	BrandColor    *string        `json:"brandColor"`
	Lines         []ManifestLine `json:"lines" validate:"dive"`
}

// ManifestLine declares a line the plugin intends to report.
type ManifestLine struct {
	Type    string `json:"type" validate:"required"`
	Label   string `json:"label"`
	Scope   string `json:"scope"`
	Primary bool   `json:"primary,omitempty"`
}

// LoadedPlugin is a manifest plus everything needed to probe and render it
// without touching disk again.
type LoadedPlugin struct {
	Manifest    PluginManifest
	Root        string
	EntryScript string
	IconURL     string
}

// ID returns the manifest id.
func (p LoadedPlugin) ID() string { return p.Manifest.ID }

// Name returns the display name.
func (p LoadedPlugin) Name() string { return p.Manifest.Name }

// PrimaryLine returns the progress line marked primary, if any.
func (p LoadedPlugin) PrimaryLine() (ManifestLine, bool) {
	for _, line := range p.Manifest.Lines {
		if line.Primary {
			return line, true
		}
	}
	return ManifestLine{}, false
}
