// Package model holds the report types a probe produces.
package model

import "encoding/json"

// Line kinds.
const (
	KindText     = "text"
	KindProgress = "progress"
	KindBadge    = "badge"
)

// ErrorLabel and ErrorColor mark the single badge emitted for a failed probe.
const (
	ErrorLabel = "Error"
	ErrorColor = "#ef4444"
)

// MetricLine is one rendered unit of a probe report.
type MetricLine interface {
	Kind() string
	LineLabel() string
}

// TextLine is a label/value pair.
type TextLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// ProgressLine is a bounded quantity. Value -1 with Max 0 marks data the
// plugin reported in an unusable form.
type ProgressLine struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit,omitempty"`
	Color string  `json:"color,omitempty"`
}

// BadgeLine is a short status tag.
type BadgeLine struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

func (TextLine) Kind() string     { return KindText }
func (ProgressLine) Kind() string { return KindProgress }
func (BadgeLine) Kind() string    { return KindBadge }

func (l TextLine) LineLabel() string     { return l.Label }
func (l ProgressLine) LineLabel() string { return l.Label }
func (l BadgeLine) LineLabel() string    { return l.Label }

// Invalid reports whether the line carries the invalid-data sentinel.
func (l ProgressLine) Invalid() bool {
	return l.Value == -1 && l.Max == 0
}

// Fraction returns value/max clamped to [0,1]; zero when max is not positive.
func (l ProgressLine) Fraction() float64 {
	if l.Max <= 0 {
		return 0
	}
	f := l.Value / l.Max
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func (l TextLine) MarshalJSON() ([]byte, error) {
	type alias TextLine
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{KindText, alias(l)})
}

func (l ProgressLine) MarshalJSON() ([]byte, error) {
	type alias ProgressLine
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{KindProgress, alias(l)})
}

func (l BadgeLine) MarshalJSON() ([]byte, error) {
	type alias BadgeLine
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{KindBadge, alias(l)})
}

// PluginOutput is the result of a single probe call.
type PluginOutput struct {
	ProviderID  string       `json:"providerId"`
	DisplayName string       `json:"displayName"`
	Lines       []MetricLine `json:"lines"`
	IconURL     string       `json:"iconUrl,omitempty"`
}

// ErrorOutput builds the failure report for a plugin.
func ErrorOutput(providerID, displayName, iconURL, message string) PluginOutput {
	return PluginOutput{
		ProviderID:  providerID,
		DisplayName: displayName,
		IconURL:     iconURL,
		Lines:       []MetricLine{ErrorLine(message)},
	}
}

// ErrorLine is the badge used for every probe failure.
func ErrorLine(message string) BadgeLine {
	return BadgeLine{Label: ErrorLabel, Text: message, Color: ErrorColor}
}

// Failed reports whether the output is a single error badge.
func (o PluginOutput) Failed() bool {
	_, ok := o.ErrorBadge()
	return ok
}

// ErrorBadge returns the error badge of a failed output.
func (o PluginOutput) ErrorBadge() (BadgeLine, bool) {
	if len(o.Lines) != 1 {
		return BadgeLine{}, false
	}
	badge, ok := o.Lines[0].(BadgeLine)
	if !ok || badge.Label != ErrorLabel || badge.Color != ErrorColor {
		return BadgeLine{}, false
	}
	return badge, true
}

// Progress returns the first progress line with the given label.
func (o PluginOutput) Progress(label string) (ProgressLine, bool) {
	for _, line := range o.Lines {
		if p, ok := line.(ProgressLine); ok && p.Label == label {
			return p, true
		}
	}
	return ProgressLine{}, false
}
