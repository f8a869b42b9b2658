package dashboard

import (
	"context"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// ProbeService runs a single plugin probe. Implementations never fail; errors
// come back as an error badge inside the output.
type ProbeService interface {
	Probe(ctx context.Context, plugin manifest.LoadedPlugin) model.PluginOutput
}

// SettingsStore persists the user's ordering and visibility choices.
type SettingsStore interface {
	SetOrder(ids []string)
	SetDisabled(id string, disabled bool)
	Save() error
}
