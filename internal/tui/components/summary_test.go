package components

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/openusage/internal/model"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	outputs := []model.PluginOutput{
		{ProviderID: "a", Lines: []model.MetricLine{model.TextLine{Label: "x"}}},
		model.ErrorOutput("b", "B", "", "boom"),
		{},
	}

	data := Summarize(3, outputs)
	require.Equal(t, SummaryData{Total: 3, Probed: 2, Failed: 1}, data)
}

func TestSummaryView(t *testing.T) {
	t.Parallel()

	t.Run("renders empty summary", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "", NewSummary(SummaryData{}).View())
	})

	t.Run("renders partial probe", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 4, Probed: 2}).View()
		require.Contains(t, view, "Plugins: 2/4 probed")
		require.NotContains(t, view, "All plugins reported")
	})

	t.Run("renders completion", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 2, Probed: 2}).View()
		require.Contains(t, view, "All plugins reported")
	})

	t.Run("renders failures", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 2, Probed: 2, Failed: 1}).View()
		require.Contains(t, view, "1 failed")
	})

	t.Run("refreshing wins over failures", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 2, Probed: 2, Failed: 1, Refreshing: true}).View()
		require.Contains(t, view, "Refreshing")
		require.NotContains(t, view, "failed")
	})
}
