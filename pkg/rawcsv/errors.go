package rawcsv

import (
	"fmt"
	"strings"
)

// MalformedInputError is returned when the raw file cannot be used at all:
// it is unreadable, empty, or its header lacks a required column.
type MalformedInputError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *MalformedInputError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("malformed raw metadata %s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("malformed raw metadata %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// RowWarning describes a single row that was dropped during load.
type RowWarning struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (w RowWarning) Error() string {
	if w.Column == "" {
		return fmt.Sprintf("line %d: %v", w.Line, w.Err)
	}
	return fmt.Sprintf("line %d: column %s: invalid value %q: %v", w.Line, w.Column, w.Value, w.Err)
}

func (w RowWarning) Unwrap() error {
	return w.Err
}
