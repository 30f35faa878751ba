// Package exifmeta reads the location-related EXIF tags of a single photo.
package exifmeta

import (
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExifLayout is the EXIF DateTime format.
const ExifLayout = "2006:01:02 15:04:05"

var errZeroDenominator = errors.New("zero denominator")

// Metadata holds the tags of one photo. Absent numeric tags are nil and a
// zero Timestamp means no usable date was found.
type Metadata struct {
	Timestamp time.Time
	Latitude  *float64
	Longitude *float64
	Altitude  *float64

	// Speed is in the unit named by SpeedRef: "K" km/h, "M" mph, "N" knots.
	Speed    *float64
	SpeedRef string

	Model string
}

// Reader extracts Metadata from a photo stream.
//
// Implementations should return (m, true, nil) when the stream carries EXIF
// data and (Metadata{}, false, nil) when it does not.
type Reader interface {
	Read(path string, r io.Reader) (Metadata, bool, error)
}

// Decoder is the default Reader, backed by goexif.
type Decoder struct {
	// Location is used for EXIF timestamps, which carry no timezone.
	// If nil, time.UTC is used.
	Location *time.Location
}

// Read implements Reader. Individual tags that fail to decode are treated as
// absent; only the stream as a whole can be "not found".
func (d Decoder) Read(path string, r io.Reader) (Metadata, bool, error) {
	x, err := exif.Decode(r)
	if err != nil {
		// exif.Decode does not hand back partially decoded data, so any
		// failure, critical or not, means nothing usable was found.
		return Metadata{}, false, nil
	}

	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}

	var m Metadata

	// Prefer DateTimeOriginal, then DateTimeDigitized, then DateTime.
	for _, tag := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime} {
		if tm, ok := timeFromTag(x, tag, loc); ok {
			m.Timestamp = tm
			break
		}
	}

	if lat, long, err := x.LatLong(); err == nil && finite(lat) && finite(long) {
		m.Latitude = &lat
		m.Longitude = &long
	}

	if alt, ok := ratFromTag(x, exif.GPSAltitude); ok {
		// GPSAltitudeRef 1 means below sea level.
		if ref, err := x.Get(exif.GPSAltitudeRef); err == nil {
			if v, err := ref.Int(0); err == nil && v == 1 {
				alt = -alt
			}
		}
		m.Altitude = &alt
	}

	if speed, ok := ratFromTag(x, exif.GPSSpeed); ok {
		m.Speed = &speed
		m.SpeedRef = stringFromTag(x, exif.GPSSpeedRef)
	}

	m.Model = stringFromTag(x, exif.Model)

	return m, true, nil
}

func timeFromTag(x *exif.Exif, tag exif.FieldName, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(stringFromTag(x, tag))
	if s == "" || strings.HasPrefix(s, "0000:00:00") {
		return time.Time{}, false
	}

	tm, err := time.ParseInLocation(ExifLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return tm, true
}

func stringFromTag(x *exif.Exif, tag exif.FieldName) string {
	t, err := x.Get(tag)
	if err != nil {
		return ""
	}
	s, err := t.StringVal()
	if err != nil {
		return ""
	}
	// Only the NUL padding goes; models are compared byte for byte later.
	return strings.TrimRight(s, "\x00")
}

func ratFromTag(x *exif.Exif, tag exif.FieldName) (float64, bool) {
	t, err := x.Get(tag)
	if err != nil {
		return 0, false
	}
	v, err := ratValue(t)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func ratValue(t *tiff.Tag) (float64, error) {
	num, den, err := t.Rat2(0)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, errZeroDenominator
	}
	return float64(num) / float64(den), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
