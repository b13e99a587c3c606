// Package report renders command output: aligned text tables and colored
// status lines.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// MaxCellWidth is the display width a cell is truncated to.
const MaxCellWidth = 48

// Table is a plain text table aligned by display width, so titles with wide
// characters line up.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = runewidth.Truncate(cells[i], MaxCellWidth, "…")
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table with a header underline.
func (t *Table) Render(w io.Writer) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}

	if err := writeLine(w, t.headers, widths); err != nil {
		return err
	}
	if err := writeLine(w, rule, widths); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := writeLine(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, cells []string, widths []int) error {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			padded[i] = cell
			continue
		}
		padded[i] = runewidth.FillRight(cell, widths[i])
	}
	_, err := fmt.Fprintln(w, strings.Join(padded, "  "))
	return err
}

// OK writes a green success line.
func OK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Green.Sprint("✓ ")+fmt.Sprintf(format, args...))
}

// Warn writes a yellow warning line.
func Warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Yellow.Sprint("! ")+fmt.Sprintf(format, args...))
}

// Fail writes a red failure line.
func Fail(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.Red.Sprint("✗ ")+fmt.Sprintf(format, args...))
}

// Field writes an aligned "label: value" line.
func Field(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "  %s %v\n", runewidth.FillRight(label+":", 14), value)
}

// Value formats a cursor value for display, showing NULL for nil.
func Value(v interface{}) string {
	if v == nil {
		return "<Null>"
	}
	return fmt.Sprint(v)
}
