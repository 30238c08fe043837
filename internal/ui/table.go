package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align is a column's text justification within Table.Render.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table is a bare ANSI-aware fixed-width table printer backing the
// `set -o` on/off listing and `trap -l` (`trap -p` and `set +o` print
// plain lines and do not use it): no
// headers (those built-ins never print one) and per-column alignment, so
// a signal-number column can line up right-justified the way `trap -l`'s
// output does.
type Table struct {
	writer  io.Writer
	rows    [][]string
	aligns  map[int]Align
	padding int
}

// NewTable creates a new table writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{writer: w, padding: 2}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cols ...string) {
	t.rows = append(t.rows, cols)
}

// SetAlign right- or left-justifies column col; columns default to
// AlignLeft.
func (t *Table) SetAlign(col int, a Align) {
	if t.aligns == nil {
		t.aligns = make(map[int]Align)
	}
	t.aligns[col] = a
}

// Render prints every row, each column padded to the widest value seen
// in that column across the whole table.
func (t *Table) Render() {
	if len(t.rows) == 0 {
		return
	}

	numCols := 0
	for _, row := range t.rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	colWidths := make([]int, numCols)
	for _, row := range t.rows {
		for i, col := range row {
			if w := VisibleLen(col); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	for _, row := range t.rows {
		t.printRow(row, colWidths)
	}
}

func (t *Table) printRow(row []string, widths []int) {
	for i, col := range row {
		pad := strings.Repeat(" ", widths[i]-VisibleLen(col))
		last := i == len(widths)-1
		if t.aligns[i] == AlignRight {
			fmt.Fprint(t.writer, pad, col)
		} else {
			fmt.Fprint(t.writer, col)
		}
		if !last {
			if t.aligns[i] == AlignRight {
				fmt.Fprint(t.writer, strings.Repeat(" ", t.padding))
			} else {
				fmt.Fprint(t.writer, pad, strings.Repeat(" ", t.padding))
			}
		}
	}
	fmt.Fprintln(t.writer)
}

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// VisibleLen returns the visible length of a string (excluding ANSI codes).
func VisibleLen(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}
