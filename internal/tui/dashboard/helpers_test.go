package dashboard

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/openusage/internal/manifest"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

type fakeService struct {
	mu      sync.Mutex
	outputs map[string]model.PluginOutput
	calls   []string
}

func (f *fakeService) Probe(_ context.Context, plugin manifest.LoadedPlugin) model.PluginOutput {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, plugin.ID())
	if out, ok := f.outputs[plugin.ID()]; ok {
		return out
	}
	return model.PluginOutput{ProviderID: plugin.ID(), DisplayName: plugin.Name()}
}

type fakeSettings struct {
	order    []string
	disabled map[string]bool
	saves    int
	saveErr  error
}

func (f *fakeSettings) SetOrder(ids []string) { f.order = append([]string(nil), ids...) }

func (f *fakeSettings) SetDisabled(id string, disabled bool) {
	if f.disabled == nil {
		f.disabled = make(map[string]bool)
	}
	f.disabled[id] = disabled
}

func (f *fakeSettings) Save() error {
	f.saves++
	return f.saveErr
}

func testPlugin(id string) manifest.LoadedPlugin {
	return manifest.LoadedPlugin{
		Manifest: manifest.PluginManifest{
			ID:      id,
			Name:    "Plugin " + id,
			Version: "1.0.0",
			Lines: []manifest.ManifestLine{
				{Type: "progress", Label: "Session", Primary: true},
			},
		},
		Root: "/plugins/" + id,
	}
}

func testPlugins(ids ...string) []manifest.LoadedPlugin {
	out := make([]manifest.LoadedPlugin, len(ids))
	for i, id := range ids {
		out[i] = testPlugin(id)
	}
	return out
}

func newTestModel(ids ...string) (Model, *fakeService, *fakeSettings) {
	svc := &fakeService{outputs: map[string]model.PluginOutput{}}
	settings := &fakeSettings{}
	return NewModel(testPlugins(ids...), svc, settings, Options{UseUnicode: true}), svc, settings
}
