package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/quidome/photomap-go/pkg/plan"
	"github.com/quidome/photomap-go/pkg/rawcsv"
	"github.com/spf13/cobra"
)

func newDevicesCmd(opts *options) *cobra.Command {
	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List the device models in the raw metadata file",
		Long: "List every distinct device model in the raw metadata table with its photo " +
			"count, in order of first appearance. Use the names as --my-device values.",
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
			loc, err := settings.Location()
			if err != nil {
				return err
			}

			var devices []rawcsv.DeviceCount
			_, err = rawcsv.Load(paths.Raw, rawcsv.Options{
				Location:  loc,
				Logger:    &log,
				OnDevices: func(d []rawcsv.DeviceCount) { devices = d },
			})
			if err != nil {
				return err
			}

			if len(devices) == 0 {
				cmd.Println("No device models found")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tPHOTOS")
			for _, d := range devices {
				fmt.Fprintf(tw, "%s\t%d\n", d.Model, d.Count)
			}
			return tw.Flush()
		},
	}

	devicesCmd.Flags().String("raw-file", "", "raw metadata file (default: <photo-dir>/"+plan.DefaultRawFilename+")")

	return devicesCmd
}
