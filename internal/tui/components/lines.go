package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/openusage/internal/model"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(18)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	badgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// Lines renders the metric lines of one plugin output.
type Lines struct {
	bar Bar
}

// NewLines creates a line renderer whose progress bars have the given width.
func NewLines(barWidth int) Lines {
	return Lines{bar: NewBar(barWidth)}
}

// View renders every line, one per row.
func (l Lines) View(lines []model.MetricLine) string {
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, l.Line(line))
	}
	return strings.Join(rows, "\n")
}

// Line renders a single metric line.
func (l Lines) Line(line model.MetricLine) string {
	label := labelStyle.Render(line.LineLabel())

	switch v := line.(type) {
	case model.TextLine:
		return lipgloss.JoinHorizontal(lipgloss.Left, label, colored(v.Color).Render(v.Value))
	case model.ProgressLine:
		return lipgloss.JoinHorizontal(lipgloss.Left, label, l.bar.View(v))
	case model.BadgeLine:
		return lipgloss.JoinHorizontal(lipgloss.Left, label, Badge(v))
	default:
		return label
	}
}

// Badge renders the text of a badge line on its color.
func Badge(line model.BadgeLine) string {
	style := badgeStyle
	if line.Color != "" {
		style = style.Background(lipgloss.Color(line.Color)).Foreground(lipgloss.Color("#ffffff"))
	}
	return style.Render(line.Text)
}

func colored(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
