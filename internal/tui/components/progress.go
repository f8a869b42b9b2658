package components

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// DefaultBarWidth is the bar width used when none is given.
const DefaultBarWidth = 30

// Bar renders progress lines.
type Bar struct {
	bar progress.Model
}

// NewBar creates a bar of the given width.
func NewBar(width int) Bar {
	if width <= 0 {
		width = DefaultBarWidth
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = width
	return Bar{bar: bar}
}

// Colored returns a copy of the bar filled with a single color.
func (b Bar) Colored(color string) Bar {
	if color == "" {
		return b
	}
	width := b.bar.Width
	bar := progress.New(progress.WithSolidFill(color), progress.WithoutPercentage())
	bar.Width = width
	return Bar{bar: bar}
}

// ViewFraction renders only the bar for a ratio in [0,1].
func (b Bar) ViewFraction(ratio float64) string {
	return b.bar.ViewAs(ratio)
}

// View renders a progress line: bar followed by "value / max unit".
// Lines carrying the invalid-data marker render as "n/a".
func (b Bar) View(line model.ProgressLine) string {
	if line.Invalid() {
		return lipgloss.JoinHorizontal(lipgloss.Left, b.bar.ViewAs(0), " ", mutedStyle.Render("n/a"))
	}

	amount := fmt.Sprintf("%s / %s", FormatNumber(line.Value), FormatNumber(line.Max))
	if line.Unit != "" {
		amount += " " + line.Unit
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, b.Colored(line.Color).bar.ViewAs(line.Fraction()), " ", amount)
}

// FormatNumber prints a float without trailing zeros, rounded to two places.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
