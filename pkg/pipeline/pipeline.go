// Package pipeline runs one photomap pass: optional extraction, loading,
// quality control and writing the final table.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/quidome/photomap-go/pkg/extract"
	"github.com/quidome/photomap-go/pkg/finalcsv"
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/quidome/photomap-go/pkg/qc"
	"github.com/quidome/photomap-go/pkg/rawcsv"
	"github.com/rs/zerolog"
)

// Options configures Run.
type Options struct {
	// Paths must be fully laid out, see plan.Layout. When Extractor is set,
	// Paths.Raw is ignored in favour of the path the extractor reports.
	Paths plan.Paths

	// Extractor produces the raw table from Paths.PhotoDir. If nil, the
	// existing table at Paths.Raw is processed.
	Extractor extract.Extractor

	Filters qc.Config

	// Overwrite replaces an existing final table.
	Overwrite bool

	// Location is used for raw timestamps without an offset. If nil, UTC.
	Location *time.Location

	// TimeLayout formats output timestamps. If empty, see finalcsv.Options.
	TimeLayout string

	Logger *zerolog.Logger
}

// Summary describes a completed run.
type Summary struct {
	Paths     plan.Paths
	Extracted bool
	Devices   []rawcsv.DeviceCount
	Warnings  []rawcsv.RowWarning
	Stats     qc.Stats
}

// RawDestination returns where extraction should write when the configured
// raw path is path. Without overwrite an existing file is kept and a free
// _N variant is chosen instead.
func RawDestination(path string, overwrite bool) string {
	if overwrite {
		return path
	}
	return plan.NextFree(path, plan.Exists)
}

// Run executes the pipeline. Errors are returned unchanged from the failing
// stage, so callers can match extract.Error, rawcsv.MalformedInputError and
// finalcsv.WriteError with errors.As.
func Run(ctx context.Context, opts Options) (Summary, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	summary := Summary{Paths: opts.Paths}

	if opts.Extractor != nil {
		raw, err := opts.Extractor.Extract(ctx, opts.Paths.PhotoDir)
		if err != nil {
			return summary, err
		}
		summary.Paths.Raw = raw
		summary.Extracted = true
	}

	table, err := rawcsv.Load(summary.Paths.Raw, rawcsv.Options{
		Location: opts.Location,
		Logger:   &log,
		OnDevices: func(devices []rawcsv.DeviceCount) {
			summary.Devices = devices
			LogDevices(log, devices)
		},
	})
	if err != nil {
		return summary, err
	}
	summary.Warnings = table.Warnings

	if opts.Filters.DeviceFilter && len(opts.Filters.AllowedDevices) == 0 {
		log.Warn().Msg("device filter is enabled with an empty allow-list; every photo will be dropped")
	}

	result := qc.Run(table.Records, opts.Filters)
	summary.Stats = result.Stats

	err = finalcsv.Write(summary.Paths.Final, result.Records, finalcsv.Options{
		Overwrite:  opts.Overwrite,
		TimeLayout: opts.TimeLayout,
	})
	if err != nil {
		return summary, err
	}

	log.Info().
		Str("raw", summary.Paths.Raw).
		Str("final", summary.Paths.Final).
		Str("plot", summary.Paths.Plot).
		Int("input", result.Stats.Input).
		Int("missing_coordinates", result.Stats.MissingCoordinates).
		Int("airborne", result.Stats.Airborne).
		Int("device_rejected", result.Stats.DeviceRejected).
		Int("kept", result.Stats.Kept).
		Int("dropped_rows", len(table.Warnings)).
		Msg("final metadata written")

	return summary, nil
}

// LogDevices logs the distinct device models of a raw table, which is what
// users need to fill the device allow-list.
func LogDevices(log zerolog.Logger, devices []rawcsv.DeviceCount) {
	models := make([]string, 0, len(devices))
	for _, d := range devices {
		models = append(models, d.Model)
	}
	log.Info().
		Int("count", len(devices)).
		Str("models", strings.Join(models, ", ")).
		Msg("devices in raw metadata")
}
