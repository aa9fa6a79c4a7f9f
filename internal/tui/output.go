package tui

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output is how commands report results. The text implementation styles
// lines for a terminal; the JSON implementation stays silent except for
// structured payloads, so scripts can pipe stdout without scraping.
type Output interface {
	// Success prints a success line.
	Success(msg string)
	// Error prints an error line.
	Error(err error)
	// Warning prints a warning line.
	Warning(msg string)
	// Info prints an informational line.
	Info(msg string)
	// JSON writes a value as indented JSON.
	JSON(v any) error
}

// TTYOutput writes styled lines for terminal display.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a TTYOutput writing to w.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{w: w, styles: NewOutputStyles()}
}

// Success prints a success line.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error prints an error line.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
}

// Warning prints a warning line.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints an informational line.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// JSON writes a value as indented JSON.
func (o *TTYOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// JSONOutput emits only structured payloads. Progress and decoration
// methods are no-ops so stdout carries nothing but JSON.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a JSONOutput writing to w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Success is a no-op in JSON mode.
func (o *JSONOutput) Success(_ string) {}

// Error emits the error as a JSON object.
func (o *JSONOutput) Error(err error) {
	_ = encodeJSON(o.w, map[string]string{"error": err.Error()})
}

// Warning is a no-op in JSON mode.
func (o *JSONOutput) Warning(_ string) {}

// Info is a no-op in JSON mode.
func (o *JSONOutput) Info(_ string) {}

// JSON writes a value as indented JSON.
func (o *JSONOutput) JSON(v any) error {
	return encodeJSON(o.w, v)
}

// NewOutput selects the implementation for an output format. Anything
// other than "json" gets the terminal renderer.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
