package main

import (
	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/spf13/cobra"
)

func newExtractCmd(opts *options) *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Write the raw metadata table for the photo directory",
		Long: "Extract EXIF metadata from every photo below the photo directory and " +
			"write it to the raw metadata file without filtering.",
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

			extractor, err := newExtractor(settings, paths, &log)
			if err != nil {
				return err
			}
			raw, err := extractor.Extract(cmd.Context(), paths.PhotoDir)
			if err != nil {
				return err
			}

			cmd.Printf("Raw metadata: %s\n", raw)
			return nil
		},
	}

	addExtractFlags(extractCmd)

	return extractCmd
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().String("extractor", "native", "metadata extractor (native or exiftool)")
	cmd.Flags().String("exiftool", "exiftool", "exiftool executable")
	cmd.Flags().String("raw-file", "", "raw metadata file (default: <photo-dir>/"+plan.DefaultRawFilename+")")
	addOverwriteFlag(cmd)
}
