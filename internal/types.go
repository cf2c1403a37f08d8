package internal

type SourceKind string

const (
	SourceCSV  SourceKind = "csv"
	SourceXLSX SourceKind = "xlsx"
	SourceHTML SourceKind = "html"
)

type SinkKind string

const (
	SinkXLSX   SinkKind = "xlsx"
	SinkCSV    SinkKind = "csv"
	SinkJSON   SinkKind = "json"
	SinkSQLite SinkKind = "sqlite"
)

// SourceIndexColumn is always the first column of an exported table.
const SourceIndexColumn = "source_index"

type ExportRow struct {
	SourceIndex int
	Cells       map[string]string
}

// Frame is the tabular form of a set of records. Rows may have different
// shapes; Columns is the union of their cell keys in first-seen order and
// does not include SourceIndexColumn.
type Frame struct {
	Columns []string
	Rows    []ExportRow
}

// Value reports the cell at (row, column). ok is false when the row has no
// such cell, which is distinct from an empty body.
func (f Frame) Value(row int, column string) (string, bool) {
	if row < 0 || row >= len(f.Rows) {
		return "", false
	}
	v, ok := f.Rows[row].Cells[column]
	return v, ok
}

// Header returns SourceIndexColumn followed by Columns.
func (f Frame) Header() []string {
	return append([]string{SourceIndexColumn}, f.Columns...)
}

// AddRow appends a row and extends Columns with any new keys in the order
// given by keys.
func (f *Frame) AddRow(sourceIndex int, keys []string, cells map[string]string) {
	seen := make(map[string]struct{}, len(f.Columns))
	for _, c := range f.Columns {
		seen[c] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		f.Columns = append(f.Columns, k)
	}
	f.Rows = append(f.Rows, ExportRow{SourceIndex: sourceIndex, Cells: cells})
}

// MapValues returns a copy of the frame with fn applied to every present cell.
func (f Frame) MapValues(fn func(string) string) Frame {
	out := Frame{Columns: append([]string(nil), f.Columns...), Rows: make([]ExportRow, 0, len(f.Rows))}
	for _, row := range f.Rows {
		cells := make(map[string]string, len(row.Cells))
		for k, v := range row.Cells {
			cells[k] = fn(v)
		}
		out.Rows = append(out.Rows, ExportRow{SourceIndex: row.SourceIndex, Cells: cells})
	}
	return out
}
