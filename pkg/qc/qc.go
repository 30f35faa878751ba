// Package qc applies quality-control rules to raw photo records and projects
// the survivors down to time and position.
//
// Every rule is a total function over optional fields, so filtering cannot
// fail. The output is always an order-preserving subsequence of the input.
package qc

import "github.com/quidome/photomap-go/pkg/photo"

// Flight thresholds. A photo is treated as taken aboard an aircraft only when
// both are exceeded.
const (
	FlightAltitudeMeters = 1000.0
	FlightSpeedKmh       = 75.0
)

// Config selects which rules run.
type Config struct {
	// FlightFilter drops photos taken above FlightAltitudeMeters while moving
	// faster than FlightSpeedKmh.
	FlightFilter bool

	// DeviceFilter keeps only photos whose device model is in AllowedDevices.
	// An empty list with DeviceFilter set drops everything.
	DeviceFilter   bool
	AllowedDevices []string
}

// Verdict is the outcome of classifying a single record.
type Verdict string

const (
	VerdictKept               Verdict = "kept"
	VerdictMissingCoordinates Verdict = "missing_coordinates"
	VerdictAirborne           Verdict = "airborne"
	VerdictDeviceRejected     Verdict = "device_rejected"
)

// Stats counts records per verdict.
type Stats struct {
	Input              int `json:"input"`
	MissingCoordinates int `json:"missing_coordinates"`
	Airborne           int `json:"airborne"`
	DeviceRejected     int `json:"device_rejected"`
	Kept               int `json:"kept"`
}

// Result is the projected output together with its stats.
type Result struct {
	Records []photo.Final
	Stats   Stats
}

// Filter is a Config prepared for repeated classification.
type Filter struct {
	cfg     Config
	allowed map[string]struct{}
}

// New prepares cfg. The allow-list is copied, so later changes to
// cfg.AllowedDevices have no effect.
func New(cfg Config) *Filter {
	allowed := make(map[string]struct{}, len(cfg.AllowedDevices))
	for _, d := range cfg.AllowedDevices {
		allowed[d] = struct{}{}
	}
	return &Filter{cfg: cfg, allowed: allowed}
}

// Classify decides the fate of r. Rules run in a fixed order and the first
// one to reject wins.
func (f *Filter) Classify(r photo.Record) Verdict {
	if !r.HasCoordinates() {
		return VerdictMissingCoordinates
	}
	if f.cfg.FlightFilter && Airborne(r) {
		return VerdictAirborne
	}
	if f.cfg.DeviceFilter {
		if _, ok := f.allowed[r.DeviceModel]; !ok || r.DeviceModel == "" {
			return VerdictDeviceRejected
		}
	}
	return VerdictKept
}

// Run filters and projects records.
func (f *Filter) Run(records []photo.Record) Result {
	res := Result{
		Records: make([]photo.Final, 0, len(records)),
		Stats:   Stats{Input: len(records)},
	}

	for _, r := range records {
		switch f.Classify(r) {
		case VerdictMissingCoordinates:
			res.Stats.MissingCoordinates++
		case VerdictAirborne:
			res.Stats.Airborne++
		case VerdictDeviceRejected:
			res.Stats.DeviceRejected++
		case VerdictKept:
			res.Stats.Kept++
			res.Records = append(res.Records, r.Project())
		}
	}
	return res
}

// Run filters and projects records with cfg.
func Run(records []photo.Record, cfg Config) Result {
	return New(cfg).Run(records)
}

// Apply returns only the projected records of Run.
func Apply(records []photo.Record, cfg Config) []photo.Final {
	return Run(records, cfg).Records
}

// Airborne reports whether r carries evidence of being taken in flight.
// Missing altitude or speed is never evidence.
func Airborne(r photo.Record) bool {
	if r.Altitude == nil || r.Speed == nil {
		return false
	}
	return *r.Altitude > FlightAltitudeMeters && *r.Speed > FlightSpeedKmh
}
