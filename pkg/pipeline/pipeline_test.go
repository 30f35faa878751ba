package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quidome/photomap-go/internal/testutil"
	"github.com/quidome/photomap-go/pkg/extract"
	"github.com/quidome/photomap-go/pkg/finalcsv"
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/quidome/photomap-go/pkg/qc"
	"github.com/quidome/photomap-go/pkg/rawcsv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRaw = `SourceFile,DateTimeOriginal,GPSLatitude,GPSLongitude,GPSAltitude,GPSSpeed,GPSSpeedRef,Model
a.jpg,2020-01-01T00:00,40.0,-74.0,500,20,K,iPhone 6
b.jpg,2020-01-01T01:00,41.0,-73.0,9000,400,K,iPhone 6
`

func TestRun_FiltersRawTable(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		filters qc.Config
		want    string
		stats   qc.Stats
	}{
		{
			name:    "flight filter drops airborne row",
			raw:     sampleRaw,
			filters: qc.Config{FlightFilter: true},
			want:    "timestamp,latitude,longitude\n2020-01-01T00:00:00,40,-74\n",
			stats:   qc.Stats{Input: 2, Airborne: 1, Kept: 1},
		},
		{
			name:    "device filter without match drops everything",
			raw:     sampleRaw,
			filters: qc.Config{DeviceFilter: true, AllowedDevices: []string{"HERO4 Silver"}},
			want:    "timestamp,latitude,longitude\n",
			stats:   qc.Stats{Input: 2, DeviceRejected: 2},
		},
		{
			name: "missing latitude is excluded",
			raw: `SourceFile,DateTimeOriginal,GPSLatitude,GPSLongitude,GPSAltitude,GPSSpeed,GPSSpeedRef,Model
a.jpg,2020-01-01T00:00,,-74.0,500,20,K,iPhone 6
`,
			want:  "timestamp,latitude,longitude\n",
			stats: qc.Stats{Input: 1, MissingCoordinates: 1},
		},
		{
			name: "malformed row is skipped",
			raw: `SourceFile,DateTimeOriginal,GPSLatitude,GPSLongitude,GPSAltitude,GPSSpeed,GPSSpeedRef,Model
a.jpg,2020-01-01T00:00,N/A,-74.0,500,20,K,iPhone 6
b.jpg,2020-01-01T01:00,41.0,-73.0,,,,iPhone 6
`,
			want:  "timestamp,latitude,longitude\n2020-01-01T01:00:00,41,-73\n",
			stats: qc.Stats{Input: 1, Kept: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			paths := writeRaw(t, tc.raw)

			summary, err := Run(context.Background(), Options{Paths: paths, Filters: tc.filters})
			require.NoError(t, err)
			assert.False(t, summary.Extracted)
			assert.Equal(t, tc.stats, summary.Stats)

			got, err := os.ReadFile(paths.Final)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestRun_ReportsDevicesAndWarnings(t *testing.T) {
	paths := writeRaw(t, `SourceFile,DateTimeOriginal,GPSLatitude,GPSLongitude,Model
a.jpg,2020-01-01T00:00,1,2,iPhone 6
b.jpg,2020-01-01T00:00,N/A,2,iPhone X
c.jpg,2020-01-01T00:00,1,2,HERO4 Silver
d.jpg,2020-01-01T00:00,1,2,iPhone 6
`)

	summary, err := Run(context.Background(), Options{Paths: paths})
	require.NoError(t, err)

	assert.Equal(t, []rawcsv.DeviceCount{
		{Model: "iPhone 6", Count: 2},
		{Model: "HERO4 Silver", Count: 1},
	}, summary.Devices)
	require.Len(t, summary.Warnings, 1)
	assert.Equal(t, 3, summary.Warnings[0].Line)
}

func TestRun_IsIdempotent(t *testing.T) {
	paths := writeRaw(t, sampleRaw)
	opts := Options{Paths: paths, Filters: qc.Config{FlightFilter: true}, Overwrite: true}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first, err := os.ReadFile(paths.Final)
	require.NoError(t, err)

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := os.ReadFile(paths.Final)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_KeepsExistingOutputWithoutOverwrite(t *testing.T) {
	paths := writeRaw(t, sampleRaw)
	require.NoError(t, os.WriteFile(paths.Final, []byte("keep"), 0o644))

	_, err := Run(context.Background(), Options{Paths: paths})

	var writeErr *finalcsv.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.ErrorIs(t, err, finalcsv.ErrDestinationExists)

	got, _ := os.ReadFile(paths.Final)
	assert.Equal(t, "keep", string(got))
}

func TestRun_MissingRawFile(t *testing.T) {
	dir := t.TempDir()
	paths := plan.Layout(plan.Paths{PhotoDir: dir})

	_, err := Run(context.Background(), Options{Paths: paths})

	var malformed *rawcsv.MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.NoFileExists(t, paths.Final)
}

func TestRun_WarnsOnEmptyAllowList(t *testing.T) {
	paths := writeRaw(t, sampleRaw)

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	summary, err := Run(context.Background(), Options{
		Paths:   paths,
		Filters: qc.Config{DeviceFilter: true},
		Logger:  &log,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Stats.Kept)
	assert.Contains(t, buf.String(), "empty allow-list")
	assert.Contains(t, buf.String(), "iPhone 6")
}

func TestRun_ExtractsFirst(t *testing.T) {
	dir := t.TempDir()
	photo := testutil.TIFF(testutil.Photo{
		Model:            "iPhone 6",
		DateTimeOriginal: "2019:05:04 13:04:10",
		HasGPS:           true,
		Latitude:         40.5,
		Longitude:        -74.25,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.tif"), photo, 0o644))

	paths := plan.Layout(plan.Paths{PhotoDir: dir})
	summary, err := Run(context.Background(), Options{
		Paths:     paths,
		Extractor: extract.Native{Dest: paths.Raw},
	})
	require.NoError(t, err)
	assert.True(t, summary.Extracted)
	assert.Equal(t, paths.Raw, summary.Paths.Raw)
	assert.FileExists(t, paths.Raw)

	got, err := os.ReadFile(paths.Final)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,latitude,longitude\n2019-05-04T13:04:10,40.5,-74.25\n", string(got))
}

func TestRun_ExtractionFailureStops(t *testing.T) {
	paths := writeRaw(t, sampleRaw)
	boom := errors.New("boom")

	_, err := Run(context.Background(), Options{Paths: paths, Extractor: failingExtractor{err: boom}})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, paths.Final)
}

func TestRawDestination(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, plan.DefaultRawFilename)

	assert.Equal(t, raw, RawDestination(raw, false))

	require.NoError(t, os.WriteFile(raw, nil, 0o644))
	assert.Equal(t, raw, RawDestination(raw, true))
	assert.Equal(t, filepath.Join(dir, "ImageMetadata_raw_1.csv"), RawDestination(raw, false))
}

type failingExtractor struct {
	err error
}

func (f failingExtractor) Extract(ctx context.Context, dir string) (string, error) {
	return "", f.err
}

func writeRaw(t *testing.T, content string) plan.Paths {
	t.Helper()

	paths := plan.Layout(plan.Paths{PhotoDir: t.TempDir()})
	require.NoError(t, os.WriteFile(paths.Raw, []byte(content), 0o644))
	return paths
}
