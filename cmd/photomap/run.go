package main

import (
	"github.com/quidome/photomap-go/internal/config"
	"github.com/quidome/photomap-go/pkg/exifmeta"
	"github.com/quidome/photomap-go/pkg/extract"
	"github.com/quidome/photomap-go/pkg/pipeline"
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *options) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Extract, filter and write the final metadata table",
		Long: "Run the whole pipeline: extract EXIF metadata from the photo directory " +
			"(unless extraction is disabled), apply the quality-control filters and " +
			"write the final timestamp,latitude,longitude table.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			paths, err := settings.Paths(opts.resolver)
			if err != nil {
				return err
			}

			var extractor extract.Extractor
			if settings.Extract {
				extractor, err = newExtractor(settings, paths, &log)
				if err != nil {
					return err
				}
			}

			return process(cmd, settings, paths, extractor, log)
		},
	}

	runCmd.Flags().Bool("extract", true, "extract metadata before processing; false reuses the raw file")
	addExtractFlags(runCmd)
	addProcessFlags(runCmd)

	return runCmd
}

func newProcessCmd(opts *options) *cobra.Command {
	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Filter an existing raw metadata file",
		Long:  "Load an existing raw metadata table, apply the quality-control filters and write the final table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			paths, err := settings.Paths(opts.resolver)
			if err != nil {
				return err
			}
			return process(cmd, settings, paths, nil, log)
		},
	}

	processCmd.Flags().String("raw-file", "", "raw metadata file (default: <photo-dir>/"+plan.DefaultRawFilename+")")
	addProcessFlags(processCmd)

	return processCmd
}

func addProcessFlags(cmd *cobra.Command) {
	cmd.Flags().String("output-file", "", "final metadata file (default: <photo-dir>/"+plan.DefaultFinalFilename+")")
	cmd.Flags().String("plot-file", "", "plot path reported for downstream tools (default: <photo-dir>/"+plan.DefaultPlotFilename+")")
	addFilterFlags(cmd)
	if cmd.Flags().Lookup("overwrite") == nil {
		addOverwriteFlag(cmd)
	}
}

func process(cmd *cobra.Command, settings config.Settings, paths plan.Paths, extractor extract.Extractor, log zerolog.Logger) error {
	loc, err := settings.Location()
	if err != nil {
		return err
	}

	summary, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Paths:     paths,
		Extractor: extractor,
		Filters:   settings.QC(),
		Overwrite: settings.Overwrite,
		Location:  loc,
		Logger:    &log,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Raw metadata: %s\n", summary.Paths.Raw)
	cmd.Printf("Final metadata: %s\n", summary.Paths.Final)
	cmd.Printf("Kept %d of %d photos (%d without coordinates, %d airborne, %d from other devices, %d unreadable rows)\n",
		summary.Stats.Kept,
		summary.Stats.Input,
		summary.Stats.MissingCoordinates,
		summary.Stats.Airborne,
		summary.Stats.DeviceRejected,
		len(summary.Warnings),
	)
	return nil
}

// newExtractor builds the configured extractor writing next to paths.Raw.
func newExtractor(settings config.Settings, paths plan.Paths, log *zerolog.Logger) (extract.Extractor, error) {
	dest := pipeline.RawDestination(paths.Raw, settings.Overwrite)

	switch settings.ExtractorKind() {
	case extract.KindExifTool:
		return extract.ExifTool{
			Binary:    settings.ExifTool.Path,
			Dest:      dest,
			Overwrite: settings.Overwrite,
			Logger:    log,
		}, nil
	default:
		loc, err := settings.Location()
		if err != nil {
			return nil, err
		}
		return extract.Native{
			Dest:      dest,
			Reader:    exifmeta.Decoder{Location: loc},
			Overwrite: settings.Overwrite,
			Logger:    log,
		}, nil
	}
}
