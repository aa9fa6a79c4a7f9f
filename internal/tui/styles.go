// Package tui renders bwc command output for humans: styled result lines,
// the fixed-width status table, and stage labels. Commands that need
// machine-readable output use the JSON side of the Output abstraction
// instead; nothing here is parsed downstream.
//
// Colors are lipgloss AdaptiveColor pairs so both light and dark terminals
// stay readable, and the NO_COLOR convention (https://no-color.org/) is
// honored via CheckNoColor.
package tui

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/bwckit/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for the styling API
var (
	// ColorPrimary is blue, used for in-flight stages and informational text.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for verified runs and present artifacts.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warnings such as a non-zero build
	// exit that still produced every artifact.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed runs and missing artifacts.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for pending stages and absent values.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// OutputStyles holds the styles used by result lines.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates the default result-line styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// TableStyles holds the styles used by table rendering.
type TableStyles struct {
	Header      lipgloss.Style
	Dim         lipgloss.Style
	StageColors map[constants.Stage]lipgloss.AdaptiveColor
}

// NewTableStyles creates the default table styles.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Dim:         lipgloss.NewStyle().Foreground(ColorMuted),
		StageColors: StageColors(),
	}
}

// StageColors maps every pipeline stage to its semantic color: gray before
// work starts, blue while a run is somewhere in the middle of the pipeline,
// green or red once it is terminal.
func StageColors() map[constants.Stage]lipgloss.AdaptiveColor {
	colors := make(map[constants.Stage]lipgloss.AdaptiveColor)
	for _, stage := range []constants.Stage{
		constants.StageCloned,
		constants.StageRemoteEnsured,
		constants.StageFetched,
		constants.StageCheckedOut,
		constants.StageMetadataWritten,
		constants.StageBuilt,
	} {
		colors[stage] = ColorPrimary
	}
	colors[constants.StagePending] = ColorMuted
	colors[constants.StageVerified] = ColorSuccess
	colors[constants.StageFailed] = ColorError
	return colors
}

// StageIcon returns the status symbol for a stage. Icons back up color so
// the state survives monochrome terminals and copy-paste.
func StageIcon(stage constants.Stage) string {
	switch stage {
	case constants.StagePending:
		return "○"
	case constants.StageVerified:
		return "✓"
	case constants.StageFailed:
		return "✗"
	case constants.StageCloned, constants.StageRemoteEnsured, constants.StageFetched,
		constants.StageCheckedOut, constants.StageMetadataWritten, constants.StageBuilt:
		return "●"
	default:
		return "?"
	}
}

// StageDisplayName renders a stage constant for humans:
// "metadata_written" becomes "Metadata Written".
func StageDisplayName(stage constants.Stage) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(string(stage), "_", " "))
}

// FormatStage combines icon and display name, e.g. "✓ Verified". The
// caller applies color, giving icon + color + text redundancy.
func FormatStage(stage constants.Stage) string {
	return StageIcon(stage) + " " + StageDisplayName(stage)
}

// CheckNoColor disables styling when the environment asks for it. Call at
// the start of commands that emit styled output.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport reports whether styled output is appropriate. NO_COLOR
// set to any value (including empty) disables color, as does TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// stripANSI drops CSI color sequences so padding math sees only visible
// runes. lipgloss emits CSI sequences exclusively, so OSC handling is not
// needed here.
func stripANSI(s string) string {
	var b strings.Builder
	inSequence := false
	for _, r := range s {
		switch {
		case inSequence:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inSequence = false
			}
		case r == '\x1b':
			inSequence = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// padRight pads s with spaces to the target visible width, truncating on
// overflow. Width is measured on visible runes, not bytes.
func padRight(s string, width int) string {
	visible := utf8.RuneCountInString(stripANSI(s))
	if visible >= width {
		runes := []rune(s)
		if len(runes) > width {
			return string(runes[:width])
		}
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
