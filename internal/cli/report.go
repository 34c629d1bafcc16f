package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes for truecolor swatches.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	swatchWidth  = 3
)

// printReport writes the needed-colour table: floss id, name, stitch count,
// and assigned marker index, with an inline colour swatch when stdout is a
// terminal.
func printReport(w io.Writer, outcome *convertOutcome) {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = term.IsTerminal(int(f.Fd()))
	}

	t := newTable("DMC", "NAME", "STITCHES", "MARKER")
	total := 0
	for _, id := range outcome.Result.Needed {
		entry, ok := outcome.Palette.Lookup(id)
		if !ok {
			continue
		}
		count := outcome.Result.Counts[id]
		total += count

		name := cell{text: entry.Name}
		if useColor {
			name.prefix = fmt.Sprintf("%s%d;%d;%dm%s%s ",
				ansiBgPrefix, entry.RGB[0], entry.RGB[1], entry.RGB[2],
				strings.Repeat(" ", swatchWidth), ansiReset)
			name.width = swatchWidth + 1
		}

		t.addRow(
			cell{text: id},
			name,
			cell{text: strconv.Itoa(count)},
			cell{text: strconv.Itoa(outcome.Assignment.Markers[id])},
		)
	}

	fmt.Fprint(w, t.render())
	fmt.Fprintf(w, "\n%d colours, %d stitches (seed %d)\n", len(outcome.Result.Needed), total, outcome.Seed)
	fmt.Fprintf(w, "pattern: %s\n", outcome.PatternPath)
	if outcome.KeyPath != "" {
		fmt.Fprintf(w, "key:     %s\n", outcome.KeyPath)
	}
}
