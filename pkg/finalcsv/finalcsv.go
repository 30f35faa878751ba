package finalcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/quidome/photomap-go/internal/fsutil"
	"github.com/quidome/photomap-go/pkg/photo"
)

// Header is the column layout of the final metadata table.
var Header = []string{"timestamp", "latitude", "longitude"}

// LocalLayout formats timestamps whose source carried no UTC offset. Such a
// timestamp is a wall clock reading, so no offset is invented for it.
const LocalLayout = "2006-01-02T15:04:05.999999999"

// ErrDestinationExists is returned when the output file exists and
// overwriting was not requested.
var ErrDestinationExists = fsutil.ErrDestinationExists

// WriteError is returned when the final table cannot be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Options configures Write.
type Options struct {
	// Overwrite replaces an existing output file.
	// Default should be false for safety.
	Overwrite bool

	// TimeLayout formats every timestamp. If empty, timestamps with an offset
	// use time.RFC3339Nano and the others LocalLayout.
	TimeLayout string
}

// Encode writes records as CSV to w.
//
// Absent timestamps are written as empty cells. Coordinates use the shortest
// representation that round-trips, so identical input always encodes to
// identical bytes. An empty layout picks one per record, see Options.
func Encode(w io.Writer, records []photo.Final, layout string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	row := make([]string, len(Header))
	for _, r := range records {
		row[0] = ""
		if !r.Timestamp.IsZero() {
			row[0] = r.Timestamp.Format(timeLayout(r, layout))
		}
		row[1] = strconv.FormatFloat(r.Latitude, 'f', -1, 64)
		row[2] = strconv.FormatFloat(r.Longitude, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Write persists records at path. The table is written to a temporary file
// next to path and renamed into place, so a failed run never leaves a
// truncated table behind.
func Write(path string, records []photo.Final, opts Options) error {
	err := fsutil.WriteAtomic(path, opts.Overwrite, func(w io.Writer) error {
		if err := Encode(w, records, opts.TimeLayout); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	})
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func timeLayout(r photo.Final, layout string) string {
	switch {
	case layout != "":
		return layout
	case r.HasOffset:
		return time.RFC3339Nano
	default:
		return LocalLayout
	}
}
