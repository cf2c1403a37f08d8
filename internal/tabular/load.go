package tabular

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mdsections/internal"
)

func DetectKind(path string) internal.SourceKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return internal.SourceXLSX
	case ".html", ".htm":
		return internal.SourceHTML
	default:
		return internal.SourceCSV
	}
}

// Open reads the whole file at path. A path that cannot be opened gives
// internal.ErrSourceNotFound; content that cannot be parsed gives
// internal.ErrSourceFormat.
func Open(path string, opts Options) (*Grid, error) {
	if _, err := decoder(opts.Encoding); err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", internal.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", internal.ErrSourceNotFound, path, err)
	}

	if opts.Kind == "" {
		opts.Kind = DetectKind(path)
	}
	if opts.Kind == internal.SourceCSV && opts.Delimiter == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
		opts.Delimiter = '\t'
	}
	return Read(bytes.NewReader(blob), opts)
}

func Read(r io.Reader, opts Options) (*Grid, error) {
	switch opts.Kind {
	case internal.SourceCSV, "":
		return readCSV(r, opts)
	case internal.SourceXLSX:
		return readXLSX(r, opts)
	case internal.SourceHTML:
		return readHTML(r, opts)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", opts.Kind)
	}
}
