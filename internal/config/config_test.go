package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quidome/photomap-go/internal/fsutil"
	"github.com/quidome/photomap-go/pkg/extract"
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/quidome/photomap-go/pkg/qc"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the user's own configuration out of the search path.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("AppData", dir)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photomap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	s, err := Load(New(), "")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Extract, s.Extract)
	assert.Equal(t, d.Extractor, s.Extractor)
	assert.Equal(t, d.Overwrite, s.Overwrite)
	assert.Equal(t, d.Timezone, s.Timezone)
	assert.Equal(t, d.Log, s.Log)
	assert.Equal(t, d.ExifTool, s.ExifTool)
	assert.False(t, s.Filters.RemoveFlights)
	assert.False(t, s.Filters.OnlyMyDevices)
	assert.Empty(t, s.Filters.MyDevices)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
extract: false
extractor: exiftool
photo_dir: /photos
raw_file: /data/raw.csv
overwrite: false
filters:
  remove_flights: true
  only_my_devices: true
  my_devices:
    - iPhone 6
    - HERO4 Silver
exiftool:
  path: /usr/local/bin/exiftool
timezone: Europe/Amsterdam
log:
  level: debug
  format: json
`)

	s, err := Load(New(), path)
	require.NoError(t, err)

	assert.False(t, s.Extract)
	assert.Equal(t, extract.KindExifTool, s.ExtractorKind())
	assert.Equal(t, "/photos", s.PhotoDir)
	assert.Equal(t, "/data/raw.csv", s.RawFile)
	assert.False(t, s.Overwrite)
	assert.Equal(t, "/usr/local/bin/exiftool", s.ExifTool.Path)
	assert.Equal(t, LogSettings{Level: "debug", Format: "json"}, s.Log)
	assert.Equal(t, qc.Config{
		FlightFilter:   true,
		DeviceFilter:   true,
		AllowedDevices: []string{"iPhone 6", "HERO4 Silver"},
	}, s.QC())

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", loc.String())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
extract: true
filters:
  my_devices: [iPhone 5]
`)
	t.Setenv("PHOTOMAP_EXTRACT", "false")
	t.Setenv("PHOTOMAP_FILTERS_ONLY_MY_DEVICES", "true")
	t.Setenv("PHOTOMAP_FILTERS_MY_DEVICES", "iPhone 6,HERO4 Silver")

	s, err := Load(New(), path)
	require.NoError(t, err)

	assert.False(t, s.Extract)
	assert.True(t, s.Filters.OnlyMyDevices)
	assert.Equal(t, []string{"iPhone 6", "HERO4 Silver"}, s.Filters.MyDevices)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("PHOTOMAP_PHOTO_DIR", "/from/env")
	t.Setenv("PHOTOMAP_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("photo-dir", "", "")
	flags.String("log-level", "info", "")
	flags.StringSlice("my-device", nil, "")
	flags.Bool("remove-flights", false, "")
	require.NoError(t, flags.Parse([]string{"--photo-dir", "/from/flag", "--my-device", "iPhone X", "--remove-flights"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	s, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", s.PhotoDir)
	assert.Equal(t, "warn", s.Log.Level)
	assert.Equal(t, []string{"iPhone X"}, s.Filters.MyDevices)
	assert.True(t, s.Filters.RemoveFlights)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "filters: [unclosed\n")

	_, err := Load(New(), path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Settings)
		key    string
	}{
		{name: "defaults are valid", modify: func(*Settings) {}},
		{name: "unknown extractor", modify: func(s *Settings) { s.Extractor = "magic" }, key: "extractor"},
		{name: "unknown timezone", modify: func(s *Settings) { s.Timezone = "Mars/Olympus" }, key: "timezone"},
		{name: "unknown log level", modify: func(s *Settings) { s.Log.Level = "loud" }, key: "log.level"},
		{name: "unknown log format", modify: func(s *Settings) { s.Log.Format = "xml" }, key: "log.format"},
		{
			name: "exiftool without path",
			modify: func(s *Settings) {
				s.Extractor = "exiftool"
				s.ExifTool.Path = " "
			},
			key: "exiftool.path",
		},
		{
			name: "empty device list is allowed",
			modify: func(s *Settings) {
				s.Filters.OnlyMyDevices = true
				s.Filters.MyDevices = nil
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.modify(&s)

			err := s.Validate()
			if tc.key == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.key, verr.Key)
		})
	}
}

func TestLocation_EmptyIsUTC(t *testing.T) {
	loc, err := Settings{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

type fixedResolver struct {
	dir string
	err error
}

func (r fixedResolver) PhotoDir() (string, error) {
	return r.dir, r.err
}

func TestPaths(t *testing.T) {
	s := Default()

	paths, err := s.Paths(fixedResolver{dir: "/home/me/Pictures"})
	require.NoError(t, err)
	assert.Equal(t, plan.Paths{
		PhotoDir: "/home/me/Pictures",
		Raw:      filepath.Join("/home/me/Pictures", plan.DefaultRawFilename),
		Final:    filepath.Join("/home/me/Pictures", plan.DefaultFinalFilename),
		Plot:     filepath.Join("/home/me/Pictures", plan.DefaultPlotFilename),
	}, paths)

	s.PhotoDir = "/photos"
	s.OutputFile = "/out/final.csv"
	paths, err = s.Paths(fixedResolver{err: plan.ErrNoPhotoDir})
	require.NoError(t, err)
	assert.Equal(t, "/photos", paths.PhotoDir)
	assert.Equal(t, "/out/final.csv", paths.Final)

	s.PhotoDir = ""
	_, err = s.Paths(fixedResolver{err: plan.ErrNoPhotoDir})
	assert.ErrorIs(t, err, plan.ErrNoPhotoDir)
}

func TestWrite_RoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "photomap.yaml")

	want := Default()
	want.PhotoDir = "/photos"
	want.Filters.OnlyMyDevices = true
	want.Filters.MyDevices = []string{"iPhone 6"}
	require.NoError(t, Write(path, want, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PHOTOMAP_")
	assert.Contains(t, string(data), "photo_dir: /photos")

	got, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.ErrorIs(t, Write(path, want, false), fsutil.ErrDestinationExists)
	require.NoError(t, Write(path, Default(), true))
}
