package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mrz1836/bwckit/internal/constants"
)

// TableColumn defines a column in a generic table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table renders plain fixed-width rows. Used for small listings such as
// the versions command; the status command has its own renderer below.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the header row.
func (t *Table) WriteHeader() {
	header := ""
	for i, col := range t.columns {
		if i > 0 {
			header += " "
		}
		header += fmt.Sprintf(t.formatSpec(col), col.Name)
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(header))
}

// WriteRow writes one data row, truncating over-wide cells.
func (t *Table) WriteRow(values ...string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		if col.Width > 1 && utf8.RuneCountInString(value) > col.Width {
			runes := []rune(value)
			value = string(runes[:col.Width-1]) + "…"
		}
		row += fmt.Sprintf(t.formatSpec(col), value)
	}
	_, _ = fmt.Fprintln(t.w, row)
}

func (t *Table) formatSpec(col TableColumn) string {
	if col.Align == AlignRight {
		return fmt.Sprintf("%%%ds", col.Width)
	}
	return fmt.Sprintf("%%-%ds", col.Width)
}

// TerminalWidthNarrow is the width below which the status table switches
// to abbreviated headers.
const TerminalWidthNarrow = 100

// DefaultTerminalWidth is assumed when width detection fails.
const DefaultTerminalWidth = 80

// shortCommitLength is how many hash characters the commit column shows.
const shortCommitLength = 8

// StatusRow is one subproject line in the status table. Zero values mean
// "never": an empty Stage means no run has been recorded, a zero UpdatedAt
// means there is nothing to date.
type StatusRow struct {
	Subproject string
	Version    string
	Branch     string
	Commit     string
	Stage      constants.Stage
	Artifacts  map[constants.PackageFormat]bool
	UpdatedAt  time.Time
}

// statusColumn pairs full and abbreviated headers with a minimum width.
type statusColumn struct {
	full   string
	narrow string
	min    int
}

// Column order: subproject, version, branch, commit, stage, artifacts,
// updated. Indexed by the statusCol constants below.
//
//nolint:gochecknoglobals // Intentional package-level layout table
var statusColumns = []statusColumn{
	{full: "SUBPROJECT", narrow: "SUB", min: 10},
	{full: "VERSION", narrow: "VER", min: 12},
	{full: "BRANCH", narrow: "BR", min: 6},
	{full: "COMMIT", narrow: "SHA", min: shortCommitLength},
	{full: "STAGE", narrow: "STAGE", min: 10},
	{full: "ARTIFACTS", narrow: "ART", min: 11},
	{full: "UPDATED", narrow: "UPD", min: 9},
}

const (
	statusColSubproject = iota
	statusColVersion
	statusColBranch
	statusColCommit
	statusColStage
	statusColArtifacts
	statusColUpdated
)

// StatusTable renders subproject state as a fixed-width table. Widths are
// content-driven with per-column minimums; narrow terminals get
// abbreviated headers.
type StatusTable struct {
	rows   []StatusRow
	styles *TableStyles
	width  int
	narrow bool
}

// StatusTableOption configures a StatusTable.
type StatusTableOption func(*StatusTable)

// WithTerminalWidth forces a terminal width instead of detecting one.
func WithTerminalWidth(width int) StatusTableOption {
	return func(t *StatusTable) {
		t.width = width
		t.narrow = width > 0 && width < TerminalWidthNarrow
	}
}

// NewStatusTable creates a status table for the given rows, detecting the
// terminal width unless an option overrides it.
func NewStatusTable(rows []StatusRow, opts ...StatusTableOption) *StatusTable {
	t := &StatusTable{
		rows:   rows,
		styles: NewTableStyles(),
		width:  detectTerminalWidth(),
	}
	t.narrow = t.width > 0 && t.width < TerminalWidthNarrow

	for _, opt := range opts {
		opt(t)
	}
	return t
}

func detectTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return DefaultTerminalWidth
	}
	return width
}

// IsNarrow reports whether abbreviated headers are in use.
func (t *StatusTable) IsNarrow() bool {
	return t.narrow
}

// Headers returns the column headers for the current mode.
func (t *StatusTable) Headers() []string {
	headers := make([]string, len(statusColumns))
	for i, col := range statusColumns {
		if t.narrow {
			headers[i] = col.narrow
		} else {
			headers[i] = col.full
		}
	}
	return headers
}

// Render writes the table to w.
func (t *StatusTable) Render(w io.Writer) error {
	widths := t.columnWidths()
	headers := t.Headers()

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = t.styles.Header.Render(padRight(h, widths[i]))
	}
	if _, err := fmt.Fprintln(w, strings.Join(parts, "  ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := t.cells(row)
		for i := range cells {
			cells[i] = t.styleCell(row, i, padRight(cells[i], widths[i]))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "  ")); err != nil {
			return err
		}
	}
	return nil
}

// cells returns the plain (unstyled) cell values for a row.
func (t *StatusTable) cells(row StatusRow) []string {
	return []string{
		row.Subproject,
		row.Version,
		row.Branch,
		commitCell(row.Commit),
		stageCell(row.Stage),
		artifactsCell(row.Artifacts),
		updatedCell(row.UpdatedAt),
	}
}

// styleCell colors a padded cell. Padding happens before styling so the
// escape codes never disturb column alignment.
func (t *StatusTable) styleCell(row StatusRow, col int, padded string) string {
	switch col {
	case statusColStage:
		if row.Stage == "" {
			return t.styles.Dim.Render(padded)
		}
		if color, ok := t.styles.StageColors[row.Stage]; ok {
			return lipgloss.NewStyle().Foreground(color).Render(padded)
		}
	case statusColCommit:
		if row.Commit == "" {
			return t.styles.Dim.Render(padded)
		}
	case statusColUpdated:
		if row.UpdatedAt.IsZero() {
			return t.styles.Dim.Render(padded)
		}
	}
	return padded
}

// columnWidths starts from per-column minimums, then grows each column to
// fit its header and widest cell.
func (t *StatusTable) columnWidths() []int {
	headers := t.Headers()
	widths := make([]int, len(statusColumns))
	for i, col := range statusColumns {
		widths[i] = max(col.min, utf8.RuneCountInString(headers[i]))
	}
	for _, row := range t.rows {
		for i, cell := range t.cells(row) {
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func commitCell(commit string) string {
	if commit == "" {
		return "-"
	}
	if len(commit) > shortCommitLength {
		return commit[:shortCommitLength]
	}
	return commit
}

func stageCell(stage constants.Stage) string {
	if stage == "" {
		return "-"
	}
	return FormatStage(stage)
}

// artifactsCell marks each expected format in build order, e.g.
// "deb rpm zip" when all exist and "deb - zip" when the rpm is missing.
func artifactsCell(present map[constants.PackageFormat]bool) string {
	marks := make([]string, 0, len(constants.AllFormats()))
	for _, format := range constants.AllFormats() {
		if present[format] {
			marks = append(marks, format.String())
		} else {
			marks = append(marks, "-")
		}
	}
	return strings.Join(marks, " ")
}

func updatedCell(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return RelativeTime(at)
}
