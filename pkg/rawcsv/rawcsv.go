// Package rawcsv loads the raw metadata table produced by the extraction step.
//
// The loader is header driven and favours partial success: a row whose
// values cannot be parsed is dropped with a RowWarning, while a file that is
// unreadable or lacks a timestamp, latitude or longitude column fails the
// whole load with a MalformedInputError.
package rawcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/quidome/photomap-go/pkg/photo"
	"github.com/rs/zerolog"
)

// Options configures Load and Read.
type Options struct {
	// Location is used for timestamps that carry no offset.
	// If nil, time.UTC is used so repeated runs agree across machines.
	Location *time.Location

	// OnDevices, if set, is called once per load with the distinct device
	// models seen in the loaded rows.
	OnDevices func([]DeviceCount)

	// Logger receives one warning per dropped row. If nil, nothing is logged.
	Logger *zerolog.Logger
}

// Table is the in-memory raw metadata table.
type Table struct {
	Path     string
	Records  []photo.Record
	Warnings []RowWarning
}

// Load reads the raw metadata file at path.
func Load(path string, opts Options) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, &MalformedInputError{Path: path, Err: err}
	}
	defer f.Close()

	return Read(f, path, opts)
}

// Read parses a raw metadata table from r. Name is used in errors only.
func Read(r io.Reader, name string, opts Options) (Table, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("no header row")
		}
		return Table{}, &MalformedInputError{Path: name, Err: err}
	}

	cols, missing := resolveColumns(header)
	if len(missing) > 0 {
		return Table{}, &MalformedInputError{Path: name, Missing: missing}
	}

	table := Table{Path: name}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			table.warn(log, RowWarning{Line: parseErr.Line, Err: parseErr.Err})
			continue
		}
		if err != nil {
			return Table{}, &MalformedInputError{Path: name, Err: err}
		}

		line, _ := cr.FieldPos(0)
		if len(row) != len(header) {
			table.warn(log, RowWarning{Line: line, Err: fmt.Errorf("expected %d fields, got %d", len(header), len(row))})
			continue
		}

		rec, warning := parseRow(row, header, cols, loc)
		if warning != nil {
			warning.Line = line
			table.warn(log, *warning)
			continue
		}
		rec.Line = line
		table.Records = append(table.Records, rec)
	}

	if opts.OnDevices != nil {
		opts.OnDevices(Inventory(table.Records))
	}

	log.Debug().
		Str("path", name).
		Int("rows", len(table.Records)).
		Int("dropped", len(table.Warnings)).
		Msg("raw metadata loaded")

	return table, nil
}

func (t *Table) warn(log zerolog.Logger, w RowWarning) {
	t.Warnings = append(t.Warnings, w)
	log.Warn().
		Str("path", t.Path).
		Int("line", w.Line).
		Str("column", w.Column).
		Str("value", w.Value).
		Err(w.Err).
		Msg("dropping unparseable row")
}

func parseRow(row, header []string, cols columns, loc *time.Location) (photo.Record, *RowWarning) {
	var rec photo.Record

	cell := func(f Field) (string, string) {
		i := cols.index(f)
		if i < 0 {
			return "", ""
		}
		return strings.TrimSpace(header[i]), strings.TrimSpace(row[i])
	}
	bad := func(column, value string, err error) *RowWarning {
		return &RowWarning{Column: column, Value: value, Err: err}
	}

	_, rec.SourceFile = cell(FieldSource)
	// Device models are matched exactly, so the cell is kept as written.
	if i := cols.index(FieldDevice); i >= 0 {
		rec.DeviceModel = row[i]
	}

	if col, v := cell(FieldTimestamp); v != "" {
		ts, hasOffset, err := parseTimestamp(v, loc)
		if err != nil {
			return photo.Record{}, bad(col, v, err)
		}
		rec.Timestamp = ts
		rec.HasOffset = hasOffset
	}

	if col, v := cell(FieldLatitude); v != "" {
		lat, err := parseCoordinate(v)
		if err != nil {
			return photo.Record{}, bad(col, v, err)
		}
		rec.Latitude = &lat
	}

	if col, v := cell(FieldLongitude); v != "" {
		lon, err := parseCoordinate(v)
		if err != nil {
			return photo.Record{}, bad(col, v, err)
		}
		rec.Longitude = &lon
	}

	if col, v := cell(FieldAltitude); v != "" {
		alt, err := parseAltitude(v)
		if err != nil {
			return photo.Record{}, bad(col, v, err)
		}
		rec.Altitude = &alt
	}

	if col, v := cell(FieldSpeed); v != "" {
		speed, err := parseNumber(v)
		if err != nil {
			return photo.Record{}, bad(col, v, err)
		}
		refCol, ref := cell(FieldSpeedRef)
		factor, err := speedFactor(ref)
		if err != nil {
			return photo.Record{}, bad(refCol, ref, err)
		}
		speed *= factor
		rec.Speed = &speed
	}

	return rec, nil
}
