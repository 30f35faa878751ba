// Package config loads photomap settings from a YAML file, PHOTOMAP_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quidome/photomap-go/internal/logging"
	"github.com/quidome/photomap-go/pkg/extract"
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/quidome/photomap-go/pkg/qc"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. PHOTOMAP_PHOTO_DIR or
// PHOTOMAP_FILTERS_MY_DEVICES.
const EnvPrefix = "PHOTOMAP"

// FileName is the base name of the configuration file searched for when no
// explicit path is given.
const FileName = "photomap"

// Settings is the complete configuration of a run.
type Settings struct {
	Extract    bool             `mapstructure:"extract" yaml:"extract"`
	Extractor  string           `mapstructure:"extractor" yaml:"extractor"`
	PhotoDir   string           `mapstructure:"photo_dir" yaml:"photo_dir"`
	RawFile    string           `mapstructure:"raw_file" yaml:"raw_file"`
	OutputFile string           `mapstructure:"output_file" yaml:"output_file"`
	PlotFile   string           `mapstructure:"plot_file" yaml:"plot_file"`
	Overwrite  bool             `mapstructure:"overwrite" yaml:"overwrite"`
	Filters    FilterSettings   `mapstructure:"filters" yaml:"filters"`
	ExifTool   ExifToolSettings `mapstructure:"exiftool" yaml:"exiftool"`
	Timezone   string           `mapstructure:"timezone" yaml:"timezone"`
	Log        LogSettings      `mapstructure:"log" yaml:"log"`
}

type FilterSettings struct {
	RemoveFlights bool     `mapstructure:"remove_flights" yaml:"remove_flights"`
	OnlyMyDevices bool     `mapstructure:"only_my_devices" yaml:"only_my_devices"`
	MyDevices     []string `mapstructure:"my_devices" yaml:"my_devices"`
}

type ExifToolSettings struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Extract:   true,
		Extractor: string(extract.KindNative),
		Overwrite: true,
		Filters: FilterSettings{
			MyDevices: []string{},
		},
		ExifTool: ExifToolSettings{Path: "exiftool"},
		Timezone: "UTC",
		Log: LogSettings{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// ValidationError reports an unusable setting.
type ValidationError struct {
	Key   string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Key, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("extract", d.Extract)
	v.SetDefault("extractor", d.Extractor)
	v.SetDefault("photo_dir", d.PhotoDir)
	v.SetDefault("raw_file", d.RawFile)
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("plot_file", d.PlotFile)
	v.SetDefault("overwrite", d.Overwrite)
	v.SetDefault("filters.remove_flights", d.Filters.RemoveFlights)
	v.SetDefault("filters.only_my_devices", d.Filters.OnlyMyDevices)
	v.SetDefault("filters.my_devices", d.Filters.MyDevices)
	v.SetDefault("exiftool.path", d.ExifTool.Path)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"extract":         "extract",
	"extractor":       "extractor",
	"photo-dir":       "photo_dir",
	"raw-file":        "raw_file",
	"output-file":     "output_file",
	"plot-file":       "plot_file",
	"overwrite":       "overwrite",
	"remove-flights":  "filters.remove_flights",
	"only-my-devices": "filters.only_my_devices",
	"my-device":       "filters.my_devices",
	"exiftool":        "exiftool.path",
	"timezone":        "timezone",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

// BindFlags binds every known flag present in flags to its key. Flags that
// are not set on the command line leave file and environment values alone.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// SearchPaths lists the directories searched for photomap.yaml, in order.
func SearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "photomap"))
	}
	return paths
}

// Load reads the configuration file into v and returns validated settings.
//
// If path is empty, photomap.yaml is searched for in SearchPaths and its
// absence is not an error. An explicit path must exist.
func Load(v *viper.Viper, path string) (Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings that cannot be checked by their type.
func (s Settings) Validate() error {
	kind, err := extract.ParseKind(s.Extractor)
	if err != nil {
		return &ValidationError{Key: "extractor", Value: s.Extractor, Err: err}
	}
	if kind == extract.KindExifTool && strings.TrimSpace(s.ExifTool.Path) == "" {
		return &ValidationError{Key: "exiftool.path", Value: s.ExifTool.Path, Err: errors.New("must not be empty")}
	}
	if _, err := s.Location(); err != nil {
		return &ValidationError{Key: "timezone", Value: s.Timezone, Err: err}
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		return &ValidationError{Key: "log.level", Value: s.Log.Level, Err: err}
	}
	if !logging.ValidFormat(s.Log.Format) {
		return &ValidationError{Key: "log.format", Value: s.Log.Format, Err: errors.New("want console or json")}
	}
	return nil
}

// Location returns the time zone for timestamps without an offset.
func (s Settings) Location() (*time.Location, error) {
	if strings.TrimSpace(s.Timezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// QC returns the quality-control configuration.
func (s Settings) QC() qc.Config {
	return qc.Config{
		FlightFilter:   s.Filters.RemoveFlights,
		DeviceFilter:   s.Filters.OnlyMyDevices,
		AllowedDevices: append([]string(nil), s.Filters.MyDevices...),
	}
}

// Paths resolves the file layout. The photo directory comes from resolver
// when it is not configured.
func (s Settings) Paths(resolver plan.DirResolver) (plan.Paths, error) {
	dir := s.PhotoDir
	if dir == "" {
		var err error
		dir, err = resolver.PhotoDir()
		if err != nil {
			return plan.Paths{}, err
		}
	}
	return plan.Layout(plan.Paths{
		PhotoDir: dir,
		Raw:      s.RawFile,
		Final:    s.OutputFile,
		Plot:     s.PlotFile,
	}), nil
}

// ExtractorKind returns the configured extractor. Settings returned by Load
// always hold a valid kind.
func (s Settings) ExtractorKind() extract.Kind {
	kind, _ := extract.ParseKind(s.Extractor)
	return kind
}
