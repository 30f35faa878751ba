// Package photo holds the metadata records that flow through the pipeline.
package photo

import "time"

// Record is one row of raw photo metadata.
//
// Optional numeric fields are nil when the tag was absent. A zero Timestamp
// means the photo carried no usable date, following the convention used for
// "not found" timestamps elsewhere in this module.
type Record struct {
	// Line is the 1-based line of the row in the raw file. Diagnostics only.
	Line int

	SourceFile string

	Timestamp time.Time
	Latitude  *float64
	Longitude *float64

	// HasOffset is set when the source timestamp carried its own UTC offset.
	// Otherwise Timestamp is a wall clock reading placed in the load location.
	HasOffset bool

	// Altitude in meters above sea level.
	Altitude *float64

	// Speed in km/h, already normalized from the recorded unit.
	Speed *float64

	DeviceModel string
}

// HasCoordinates reports whether r can be placed on a map.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Final is the projected output row.
type Final struct {
	Timestamp time.Time
	HasOffset bool
	Latitude  float64
	Longitude float64
}

// Project drops everything but time and position. The caller must check
// HasCoordinates first.
func (r Record) Project() Final {
	return Final{
		Timestamp: r.Timestamp,
		HasOffset: r.HasOffset,
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
	}
}

// Float returns a pointer to v. Handy for building records in code.
func Float(v float64) *float64 {
	return &v
}
