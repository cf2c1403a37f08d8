package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrSourceFormat   = errors.New("source is not tabular data")
)

// ColumnNotFoundError is returned when a requested column matches no column
// name exactly or case-insensitively.
type ColumnNotFoundError struct {
	Requested string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	quoted := make([]string, 0, len(e.Available))
	for _, c := range e.Available {
		quoted = append(quoted, fmt.Sprintf("%q", c))
	}
	return fmt.Sprintf("column %q not found; available: [%s]", e.Requested, strings.Join(quoted, ", "))
}
