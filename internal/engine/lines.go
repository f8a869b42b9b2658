package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/alexisbeaulieu97/openusage/internal/logger"
	"github.com/alexisbeaulieu97/openusage/internal/model"
)

// parseLines reads the lines of an exported probe result. Missing or
// mistyped fields fall back to defaults.
func parseLines(result any, log *logger.Logger) ([]model.MetricLine, error) {
	obj, ok := result.(map[string]any)
	if !ok {
		return nil, errors.New(MsgMissingLines)
	}
	entries, ok := obj["lines"].([]any)
	if !ok {
		return nil, errors.New(MsgMissingLines)
	}

	lines := make([]model.MetricLine, 0, len(entries))
	for i, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid line at index %d", i)
		}

		kind := fields["type"]
		switch kind {
		case model.KindText:
			lines = append(lines, model.TextLine{
				Label: textField(fields, "label"),
				Value: textField(fields, "value"),
				Color: textField(fields, "color"),
			})
		case model.KindProgress:
			lines = append(lines, parseProgress(fields, log))
		case model.KindBadge:
			lines = append(lines, model.BadgeLine{
				Label: textField(fields, "label"),
				Text:  textField(fields, "text"),
				Color: textField(fields, "color"),
			})
		default:
			return nil, fmt.Errorf("unknown line type: %s", describeValue(kind))
		}
	}

	if len(lines) == 0 {
		return nil, errors.New(MsgNoLines)
	}
	return lines, nil
}

func parseProgress(fields map[string]any, log *logger.Logger) model.ProgressLine {
	line := model.ProgressLine{
		Label: textField(fields, "label"),
		Unit:  textField(fields, "unit"),
		Color: textField(fields, "color"),
	}

	value, valueOK := numberField(fields["value"])
	limit, limitOK := numberField(fields["max"])
	if !valueOK || !limitOK {
		log.Warn(fmt.Sprintf("progress line %q has non-numeric value=%s max=%s", line.Label,
			describeValue(fields["value"]), describeValue(fields["max"])))
		line.Value = -1
		line.Max = 0
		return line
	}

	line.Value = value
	line.Max = limit
	return line
}

// numberField accepts finite numbers. A missing value counts as zero.
func numberField(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, true
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// textField coerces scalars to strings and defaults missing fields to "".
func textField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return describeValue(v)
	}
}

func describeValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "undefined"
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return formatNumber(value)
	}
	if raw, err := json.Marshal(v); err == nil {
		return string(raw)
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
