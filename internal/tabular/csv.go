package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"mdsections/internal"
)

const DefaultEncoding = "utf-8"

func readCSV(r io.Reader, opts Options) (*Grid, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, dec))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", internal.ErrSourceFormat, err)
	}
	header, rows, ok := splitHeader(records)
	if !ok {
		return nil, fmt.Errorf("%w: csv has no header row", internal.ErrSourceFormat)
	}
	return NewGrid(header, rows), nil
}

// decoder returns a transformer to UTF-8 for a WHATWG encoding label.
// UTF-8 input has its byte order mark removed.
func decoder(label string) (transform.Transformer, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == "utf-8" || label == "utf8" {
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}
