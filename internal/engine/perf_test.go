package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/manifest"
)

func BenchmarkProbe(b *testing.B) {
	e := New(Options{AppDataDir: b.TempDir(), Logger: logger.Nop()})
	plugin := pluginWith("bench", probeScript(`function(ctx) {
		return { lines: [ctx.line.progress({ label: "Session", used: 42, limit: 100 })] }
	}`))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if out := e.Probe(context.Background(), plugin); out.Failed() {
			b.Fatalf("probe failed: %#v", out.Lines)
		}
	}
}

func BenchmarkProbeAllLarge(b *testing.B) {
	plugins := generatePlugins(200)
	e := New(Options{AppDataDir: b.TempDir(), Logger: logger.Nop()})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		outputs := e.ProbeAll(context.Background(), plugins)
		if len(outputs) != len(plugins) {
			b.Fatalf("expected %d outputs, got %d", len(plugins), len(outputs))
		}
	}
}

func generatePlugins(count int) []manifest.LoadedPlugin {
	plugins := make([]manifest.LoadedPlugin, count)
	for i := 0; i < count; i++ {
		plugins[i] = pluginWith(fmt.Sprintf("p%d", i), probeScript(fmt.Sprintf(`function() {
			return { lines: [{ type: "text", label: "index", value: "%d" }] }
		}`, i)))
	}
	return plugins
}
