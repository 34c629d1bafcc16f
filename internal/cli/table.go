// Package cli provides command-line interface utilities.
package cli

import (
	"strings"
)

// table is a simple column formatter with dynamic widths, used for the
// needed-colour report. Cells may carry an invisible ANSI prefix (colour
// swatches) that must not count toward column width.
type table struct {
	headers []string
	rows    [][]cell
	padding int
}

// cell is one table cell: visible text plus an optional ANSI-coloured
// prefix whose escape sequences are excluded from width calculations.
type cell struct {
	prefix string // rendered before text, zero display width assumed per swatch width
	width  int    // display width of prefix
	text   string
}

func newTable(headers ...string) *table {
	return &table{headers: headers, padding: 2}
}

func (t *table) addRow(cells ...cell) {
	t.rows = append(t.rows, cells)
}

// render formats the table, left-aligning every column.
func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			if w := c.width + len(c.text); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	pad := strings.Repeat(" ", t.padding)
	for i, h := range t.headers {
		b.WriteString(h)
		b.WriteString(strings.Repeat(" ", widths[i]-len(h)))
		if i < len(t.headers)-1 {
			b.WriteString(pad)
		}
	}
	b.WriteString("\n")
	for i := range t.headers {
		b.WriteString(strings.Repeat("-", widths[i]))
		if i < len(t.headers)-1 {
			b.WriteString(pad)
		}
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i, c := range row {
			b.WriteString(c.prefix)
			b.WriteString(c.text)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-c.width-len(c.text)))
				b.WriteString(pad)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
