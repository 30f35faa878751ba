package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/quidome/photomap-go/internal/config"
	"github.com/quidome/photomap-go/internal/logging"
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

type options struct {
	configFile string
	verbose    bool

	v        *viper.Viper
	resolver plan.DirResolver
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{
		v:        config.New(),
		resolver: plan.DefaultResolver(),
	}
	return newRootCmdWithOptions(opts)
}

func newRootCmdWithOptions(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photomap",
		Short: "Turn photo EXIF metadata into a table of where and when you were",
		Long: "Photomap extracts EXIF metadata from a photo directory, removes photos " +
			"taken aboard aircraft or by other people's devices, and writes a " +
			"timestamp,latitude,longitude table ready for plotting.",
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Photomap CLI")
			cmd.Printf("Version: %s\n", version)
			cmd.Println("")
			cmd.Println("Use --help to see available commands and options")
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "configuration file (default: photomap.yaml in . or the user config directory)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.String("photo-dir", "", "photo directory (default: the platform pictures directory)")
	pf.String("timezone", "UTC", "time zone for timestamps without an offset")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", logging.FormatConsole, "log format (console or json)")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newExtractCmd(opts))
	rootCmd.AddCommand(newProcessCmd(opts))
	rootCmd.AddCommand(newDevicesCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// load resolves the settings for cmd and builds its logger.
func (o *options) load(cmd *cobra.Command) (config.Settings, zerolog.Logger, error) {
	if err := config.BindFlags(o.v, cmd.Flags()); err != nil {
		return config.Settings{}, zerolog.Nop(), err
	}

	settings, err := config.Load(o.v, o.configFile)
	if err != nil {
		return config.Settings{}, zerolog.Nop(), err
	}
	if o.verbose {
		settings.Log.Level = "debug"
	}

	log, err := logging.New(logging.Options{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return config.Settings{}, zerolog.Nop(), err
	}
	return settings, log, nil
}

func addOverwriteFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("overwrite", true, "replace existing output files")
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("remove-flights", false, "drop photos taken above 1000 m at more than 75 km/h")
	cmd.Flags().Bool("only-my-devices", false, "keep only photos taken with a device from --my-device")
	cmd.Flags().StringSlice("my-device", nil, "allowed device model, exact match (repeatable)")
}
