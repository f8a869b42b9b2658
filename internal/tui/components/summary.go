package components

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// SummaryData aggregates probe outcomes for rendering summaries.
type SummaryData struct {
	Total      int
	Probed     int
	Failed     int
	Refreshing bool
}

// Summarize counts probed and failed outputs.
func Summarize(total int, outputs []model.PluginOutput) SummaryData {
	data := SummaryData{Total: total}
	for _, out := range outputs {
		if out.ProviderID == "" {
			continue
		}
		data.Probed++
		if out.Failed() {
			data.Failed++
		}
	}
	return data
}

// Summary renders a textual probe summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	if s.data.Total == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("Plugins: %d/%d probed", s.data.Probed, s.data.Total)}
	switch {
	case s.data.Refreshing:
		lines = append(lines, "Refreshing")
	case s.data.Failed > 0:
		lines = append(lines, fmt.Sprintf("%d failed", s.data.Failed))
	case s.data.Probed == s.data.Total:
		lines = append(lines, "All plugins reported")
	}

	return strings.Join(lines, "\n")
}
