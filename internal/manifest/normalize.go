package manifest

import "fmt"

// NormalizePrimary demotes every primary flag except the first one on a
// progress line and returns a warning per demotion.
func (m *PluginManifest) NormalizePrimary() []string {
	var warnings []string
	accepted := false

	for i := range m.Lines {
		line := &m.Lines[i]
		if !line.Primary {
			continue
		}

		switch {
		case line.Type != "progress":
			line.Primary = false
			warnings = append(warnings, fmt.Sprintf("line %d (%q): primary only applies to progress lines, ignored", i, line.Label))
		case accepted:
			line.Primary = false
			warnings = append(warnings, fmt.Sprintf("line %d (%q): extra primary ignored", i, line.Label))
		default:
			accepted = true
		}
	}

	return warnings
}
