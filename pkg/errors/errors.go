// Package errors holds the typed failures shared by the loaders and the
// probe engine. Load-time failures (ParseError, ValidationError, PluginError)
// exclude a plugin from the registry; ProbeError never leaves the engine and
// only feeds its logs.
package errors

import (
	"fmt"
)

// ParseError is a plugin.json or config.yaml that could not be decoded. Line
// is 1-based and 0 when the decoder gave no position.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

func NewParseError(path string, line int, err error) error {
	return &ParseError{Path: path, Line: line, Message: messageOf(err), Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	location := e.Path
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return fmt.Sprintf("parse error: %s: %s", location, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError names the manifest or config field that was rejected, e.g.
// "entry" for a path outside the plugin directory.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProbeError tags a failed probe with its plugin and the stage it reached
// (inject, eval, invoke or parse).
type ProbeError struct {
	PluginID string
	Stage    string
	Err      error
}

func NewProbeError(pluginID, stage string, err error) error {
	return &ProbeError{PluginID: pluginID, Stage: stage, Err: err}
}

func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stage == "" {
		return fmt.Sprintf("probe error [%s]: %v", e.PluginID, e.Err)
	}
	return fmt.Sprintf("probe error [%s] during %s: %v", e.PluginID, e.Stage, e.Err)
}

func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PluginError is a bundle whose manifest parsed but whose entry script or
// icon could not be read. Plugin is the manifest id.
type PluginError struct {
	Plugin  string
	Message string
	Err     error
}

func NewPluginError(plugin string, err error) error {
	return &PluginError{Plugin: plugin, Message: messageOf(err), Err: err}
}

func (e *PluginError) Error() string {
	if e == nil {
		return ""
	}
	if e.Plugin == "" {
		return "plugin error: " + e.Message
	}
	return fmt.Sprintf("plugin error [%s]: %s", e.Plugin, e.Message)
}

func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
