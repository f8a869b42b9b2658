package components

import (
	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// PrimaryFraction finds the output line matching the plugin's primary
// progress declaration and returns its clamped fraction. ok is false when
// the plugin declares no primary line, the output has no line with that
// label, or the line carries the invalid-data marker.
func PrimaryFraction(plugin manifest.LoadedPlugin, output model.PluginOutput) (float64, bool) {
	primary, ok := plugin.PrimaryLine()
	if !ok {
		return 0, false
	}
	line, ok := output.Progress(primary.Label)
	if !ok || line.Invalid() {
		return 0, false
	}
	return line.Fraction(), true
}
