package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"mdsections/internal"
	"mdsections/internal/record"
	"mdsections/internal/tabular"
	"mdsections/internal/util"
)

// Store holds one loaded source and the records built from one of its
// columns. It is not safe for concurrent use.
type Store struct {
	source  string
	column  string
	records []record.Record
	log     *slog.Logger
}

// Load opens the source at path, resolves column against its header and
// builds a record for every row.
func Load(path, column string, opts tabular.Options, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	table, err := LoadSource(path, opts)
	if err != nil {
		return nil, err
	}
	log.Debug("source loaded", "source", path, "rows", table.RowCount(), "columns", len(table.Columns()))

	actual, err := ResolveColumn(table, column)
	if err != nil {
		return nil, err
	}
	if actual != column {
		log.Info("column matched case-insensitively", "requested", column, "column", actual)
	}

	s := &Store{source: path, column: actual, log: log}
	s.records = BuildAll(table, actual)
	log.Debug("records built", "records", len(s.records), "withSections", countWithSections(s.records))
	return s, nil
}

func (s *Store) Source() string { return s.source }

func (s *Store) Column() string { return s.column }

// Records returns the built records in row order.
func (s *Store) Records() []record.Record {
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Filter(heading string) []record.Record {
	return FilterByPresence(s.records, heading)
}

func (s *Store) Export(records []record.Record, headings []string) internal.Frame {
	return ExportTable(records, headings)
}

func LoadSource(path string, opts tabular.Options) (tabular.Table, error) {
	grid, err := tabular.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// ResolveColumn matches requested against the table's columns exactly, then
// ignoring case. The first case-insensitive match in column order wins.
func ResolveColumn(t tabular.Table, requested string) (string, error) {
	columns := t.Columns()
	for _, c := range columns {
		if c == requested {
			return c, nil
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c, requested) {
			return c, nil
		}
	}
	return "", &internal.ColumnNotFoundError{Requested: requested, Available: columns}
}

// BuildAll builds one record per row. Missing cells are treated as empty text.
func BuildAll(t tabular.Table, column string) []record.Record {
	out := make([]record.Record, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		text, _ := t.Cell(i, column)
		out = append(out, record.Build(i, text))
	}
	return out
}

// FilterByPresence keeps, in order, the records that have a non-blank
// section under the normalized form of heading.
func FilterByPresence(records []record.Record, heading string) []record.Record {
	key := util.NormalizeKey(heading)
	out := []record.Record{}
	for _, r := range records {
		if body, ok := r.Get(key); ok && strings.TrimSpace(body) != "" {
			out = append(out, r)
		}
	}
	return out
}

// ExportTable turns records into a frame. With headings, every row has one
// cell per distinct normalized heading, "" where the record lacks it.
// Without headings, each row carries exactly the sections its record has.
// A section keyed like the index column is renamed with the next free _N
// suffix.
func ExportTable(records []record.Record, headings []string) internal.Frame {
	var frame internal.Frame
	keys := normalizeHeadings(headings)
	names := reserveIndexColumn(keys)
	for _, r := range records {
		if len(keys) > 0 {
			cells := make(map[string]string, len(keys))
			for i, k := range keys {
				body, _ := r.Get(k)
				cells[names[i]] = body
			}
			frame.AddRow(r.SourceIndex, names, cells)
			continue
		}

		fields := r.Fields()
		rowNames := reserveIndexColumn(fields)
		cells := make(map[string]string, len(fields))
		for i, k := range fields {
			body, _ := r.Get(k)
			cells[rowNames[i]] = body
		}
		frame.AddRow(r.SourceIndex, rowNames, cells)
	}
	if frame.Columns == nil && len(keys) > 0 {
		frame.Columns = names
	}
	return frame
}

// reserveIndexColumn returns keys with internal.SourceIndexColumn replaced by
// the smallest source_index_N (N >= 2) not already in keys.
func reserveIndexColumn(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	taken := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		taken[k] = struct{}{}
	}
	for i, k := range out {
		if k != internal.SourceIndexColumn {
			continue
		}
		for n := 2; ; n++ {
			name := fmt.Sprintf("%s_%d", k, n)
			if _, ok := taken[name]; !ok {
				taken[name] = struct{}{}
				out[i] = name
				break
			}
		}
	}
	return out
}

func normalizeHeadings(headings []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(headings))
	for _, h := range headings {
		k := util.NormalizeKey(h)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func countWithSections(records []record.Record) int {
	n := 0
	for _, r := range records {
		if r.Sections().Len() > 0 {
			n++
		}
	}
	return n
}
