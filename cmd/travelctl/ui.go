// Package main provides UI utilities for the Travel Engine CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// UI provides user-friendly terminal output.
type UI struct {
	jsonMode bool
	spin     *spinner.Spinner
}

// NewUI creates a new UI instance. In JSON mode all decoration is
// suppressed so output stays machine-parseable.
func NewUI(jsonMode bool) *UI {
	return &UI{jsonMode: jsonMode}
}

// StartSpinner shows an indeterminate spinner with the given message.
func (ui *UI) StartSpinner(message string) {
	if ui.jsonMode {
		return
	}
	ui.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	ui.spin.Suffix = " " + message
	ui.spin.Writer = os.Stderr
	ui.spin.Start()
}

// StopSpinner stops the spinner and clears the line.
func (ui *UI) StopSpinner() {
	if ui.spin != nil {
		ui.spin.Stop()
		ui.spin = nil
	}
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	color.New(color.FgYellow).Printf("⚠ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr.
func (ui *UI) Error(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Heading prints a bold section heading.
func (ui *UI) Heading(text string) {
	if ui.jsonMode {
		return
	}
	color.New(color.Bold).Println(text)
}
