// Package palette provides the reference palette of named floss colours that
// image colours are matched against.
package palette

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// ErrMalformed indicates a palette file that cannot be parsed into a valid
// set of entries (bad row shape, out-of-range component, duplicate id).
var ErrMalformed = errors.New("malformed palette")

// Entry is a single reference colour: a unique id (e.g. a floss number such
// as "310" or "B5200"), a human-readable name, and its RGB value.
type Entry struct {
	ID   string
	Name string
	RGB  [3]uint8
}

// Palette is an immutable, ordered collection of entries indexed by id.
// Iteration order is file order, which downstream matching relies on for
// deterministic tie-breaking.
type Palette struct {
	entries []Entry
	byID    map[string]int
}

// New builds a Palette from entries, validating id uniqueness.
func New(entries []Entry) (*Palette, error) {
	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has an empty id", ErrMalformed, i)
		}
		if prev, ok := byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %q (rows %d and %d)", ErrMalformed, e.ID, prev, i)
		}
		byID[e.ID] = i
	}
	return &Palette{entries: entries, byID: byID}, nil
}

// Load parses a CSV palette with rows of the form "id,name,r,g,b".
// A first row whose colour components do not parse as integers is treated
// as a header and skipped.
func Load(r io.Reader) (*Palette, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	var entries []Entry
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, row, err)
		}

		rgb, err := parseRGB(rec[2], rec[3], rec[4])
		if err != nil {
			if row == 0 {
				// Header row.
				row++
				continue
			}
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, row, err)
		}

		entries = append(entries, Entry{ID: rec[0], Name: rec[1], RGB: rgb})
		row++
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMalformed)
	}
	return New(entries)
}

// parseRGB parses three decimal colour components, enforcing the 0-255 range.
func parseRGB(rs, gs, bs string) ([3]uint8, error) {
	var rgb [3]uint8
	for i, s := range []string{rs, gs, bs} {
		v, err := strconv.Atoi(s)
		if err != nil {
			return rgb, fmt.Errorf("colour component %q is not an integer", s)
		}
		if v < 0 || v > 255 {
			return rgb, fmt.Errorf("colour component %d out of range [0,255]", v)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}

// Len returns the number of entries.
func (p *Palette) Len() int { return len(p.entries) }

// At returns the entry at index i in file order.
func (p *Palette) At(i int) Entry { return p.entries[i] }

// Entries returns the entries in file order. The returned slice must not be
// modified.
func (p *Palette) Entries() []Entry { return p.entries }

// Lookup returns the entry with the given id.
func (p *Palette) Lookup(id string) (Entry, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

//go:embed dmc.csv
var dmcCSV []byte

var (
	defaultOnce sync.Once
	defaultPal  *Palette
)

// Default returns the embedded DMC floss palette. It panics if the embedded
// table fails to parse, which would be a packaging defect.
func Default() *Palette {
	defaultOnce.Do(func() {
		p, err := Load(bytes.NewReader(dmcCSV))
		if err != nil {
			panic(fmt.Sprintf("embedded DMC palette: %v", err))
		}
		defaultPal = p
	})
	return defaultPal
}
