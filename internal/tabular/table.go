// Package tabular loads delimited, spreadsheet and HTML table files into an
// in-memory grid of named columns and ordered rows.
package tabular

import (
	"fmt"
	"strings"

	"mdsections/internal"
)

// Table is the read side the record pipeline depends on.
type Table interface {
	RowCount() int
	Cell(row int, column string) (string, bool)
	Columns() []string
}

type Options struct {
	// Kind forces a loader; empty means detect from the file extension.
	Kind      internal.SourceKind
	Encoding  string
	Delimiter rune
	Sheet     string
	// TableIndex selects the n-th <table> of an HTML source.
	TableIndex int
}

// Grid is a header row plus data rows. Rows may be shorter than the header;
// missing cells read as absent.
type Grid struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

func NewGrid(header []string, rows [][]string) *Grid {
	columns := uniqueHeaders(header)
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Grid{columns: columns, index: index, rows: rows}
}

func (g *Grid) RowCount() int { return len(g.rows) }

func (g *Grid) Columns() []string {
	out := make([]string, len(g.columns))
	copy(out, g.columns)
	return out
}

func (g *Grid) Cell(row int, column string) (string, bool) {
	if row < 0 || row >= len(g.rows) {
		return "", false
	}
	col, ok := g.index[column]
	if !ok || col >= len(g.rows[row]) {
		return "", false
	}
	return g.rows[row][col], true
}

// uniqueHeaders names blank headers "Unnamed: N" and suffixes repeats with
// .1, .2, ... so every column can be addressed by name.
func uniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	taken := map[string]bool{}
	counts := map[string]int{}
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for taken[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

// splitHeader drops leading blank rows, takes the next row as the header and
// removes blank rows from the remainder.
func splitHeader(records [][]string) ([]string, [][]string, bool) {
	for len(records) > 0 && isBlankRow(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, nil, false
	}
	rows := make([][]string, 0, len(records)-1)
	for _, r := range records[1:] {
		if isBlankRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return records[0], rows, true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
