package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"mdsections/internal"
	"mdsections/internal/storage"
)

func DetectSink(path string) (internal.SinkKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return internal.SinkXLSX, nil
	case ".csv":
		return internal.SinkCSV, nil
	case ".json":
		return internal.SinkJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return internal.SinkSQLite, nil
	default:
		return "", fmt.Errorf("unsupported output type: %s", path)
	}
}

// ExportFrame writes frame to outputPath, choosing the format from the
// extension. meta is recorded only by the SQLite sink.
func ExportFrame(frame internal.Frame, outputPath string, meta storage.RunMeta) error {
	kind, err := DetectSink(outputPath)
	if err != nil {
		return err
	}
	switch kind {
	case internal.SinkXLSX:
		return ExportFrameToXLSX(frame, outputPath)
	case internal.SinkCSV:
		return ExportFrameToCSV(frame, outputPath)
	case internal.SinkJSON:
		return ExportFrameToJSON(frame, outputPath)
	default:
		_, err := ExportFrameToSQLite(frame, outputPath, meta)
		return err
	}
}

// ExportFrameToXLSX leaves absent cells unset. A value longer than the
// xlsx cell limit is an error rather than being cut short.
func ExportFrameToXLSX(frame internal.Frame, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range frame.Header() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, row := range frame.Rows {
		r := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetCellValue(sheet, cell, row.SourceIndex); err != nil {
			return err
		}
		for j, col := range frame.Columns {
			value, ok := row.Cells[col]
			if !ok {
				continue
			}
			if n := utf8.RuneCountInString(value); n > excelize.TotalCellChars {
				return fmt.Errorf("row %d (source_index %d) column %q: %d characters exceeds the xlsx cell limit of %d",
					i, row.SourceIndex, col, n, excelize.TotalCellChars)
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, r)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportFrameToCSV writes absent cells as empty fields.
func ExportFrameToCSV(frame internal.Frame, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(frame.Header()); err != nil {
		return err
	}
	for _, row := range frame.Rows {
		line := make([]string, 0, len(frame.Columns)+1)
		line = append(line, strconv.Itoa(row.SourceIndex))
		for _, col := range frame.Columns {
			line = append(line, row.Cells[col])
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return out.Close()
}

// ExportFrameToJSON writes an array of objects; absent cells are omitted.
func ExportFrameToJSON(frame internal.Frame, outputPath string) error {
	blob, err := json.MarshalIndent(frameObjects(frame), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, blob, 0o644)
}

func ExportFrameToSQLite(frame internal.Frame, outputPath string, meta storage.RunMeta) (string, error) {
	db, err := storage.Open(outputPath)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.SaveFrame(meta, frame)
}

type jsonRow struct {
	columns []string
	index   int
	cells   map[string]string
}

func (r jsonRow) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteString(`{"` + internal.SourceIndexColumn + `":` + strconv.Itoa(r.index))
	for _, col := range r.columns {
		value, ok := r.cells[col]
		if !ok {
			continue
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func frameObjects(frame internal.Frame) []jsonRow {
	out := make([]jsonRow, 0, len(frame.Rows))
	for _, row := range frame.Rows {
		out = append(out, jsonRow{columns: frame.Columns, index: row.SourceIndex, cells: row.Cells})
	}
	return out
}
