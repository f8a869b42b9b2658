package main

import (
	"fmt"
	"strings"
)

// commandError is what every subcommand returns to main: the failed
// operation, what it was doing, the cause and a next step for the user.
type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

func (e *commandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Failed to %s: %s\n\nError: %v", e.operation, e.context, e.cause)
	if e.suggestion != "" {
		fmt.Fprintf(&b, "\n\nSuggestion: %s", e.suggestion)
	}
	return b.String()
}

func (e *commandError) Unwrap() error {
	return e.cause
}
