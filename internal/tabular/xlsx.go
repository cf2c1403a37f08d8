package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mdsections/internal"
)

func readXLSX(r io.Reader, opts Options) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %w", internal.ErrSourceFormat, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", internal.ErrSourceFormat)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", internal.ErrSourceFormat, sheet, err)
	}
	header, data, ok := splitHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q has no header row", internal.ErrSourceFormat, sheet)
	}
	return NewGrid(header, data), nil
}
