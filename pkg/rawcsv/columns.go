package rawcsv

import "strings"

// Field identifies a logical column of the raw metadata table.
type Field string

const (
	FieldSource    Field = "source"
	FieldTimestamp Field = "timestamp"
	FieldLatitude  Field = "latitude"
	FieldLongitude Field = "longitude"
	FieldAltitude  Field = "altitude"
	FieldSpeed     Field = "speed"
	FieldSpeedRef  Field = "speed_ref"
	FieldDevice    Field = "device"
)

// ExifToolColumns is the header written by exiftool for the tags this module
// requests, in order. The native extractor writes the same header.
var ExifToolColumns = []string{
	"SourceFile",
	"DateTimeOriginal",
	"GPSLatitude",
	"GPSLongitude",
	"GPSAltitude",
	"GPSSpeed",
	"GPSSpeedRef",
	"Model",
}

// aliases maps each field to the header names accepted for it, in order of
// preference. Matching is case-insensitive.
var aliases = map[Field][]string{
	FieldSource:    {"SourceFile", "source_file", "file"},
	FieldTimestamp: {"DateTimeOriginal", "CreateDate", "DateTime", "timestamp", "time"},
	FieldLatitude:  {"GPSLatitude", "latitude", "lat"},
	FieldLongitude: {"GPSLongitude", "longitude", "lon", "lng"},
	FieldAltitude:  {"GPSAltitude", "altitude", "alt"},
	FieldSpeed:     {"GPSSpeed", "speed"},
	FieldSpeedRef:  {"GPSSpeedRef", "speed_ref"},
	FieldDevice:    {"Model", "deviceModel", "device_model", "device"},
}

var requiredFields = []Field{FieldTimestamp, FieldLatitude, FieldLongitude}

// columns is the resolved position of every field in a header; -1 when the
// field has no column.
type columns map[Field]int

func (c columns) index(f Field) int {
	i, ok := c[f]
	if !ok {
		return -1
	}
	return i
}

func resolveColumns(header []string) (columns, []string) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if i == 0 {
			key = strings.TrimPrefix(key, "\ufeff")
		}
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	cols := make(columns, len(aliases))
	for field, names := range aliases {
		for _, name := range names {
			if i, ok := pos[strings.ToLower(name)]; ok {
				cols[field] = i
				break
			}
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if cols.index(f) < 0 {
			missing = append(missing, string(f))
		}
	}
	return cols, missing
}
