package main

import (
	"github.com/quidome/photomap-go/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the photomap configuration file",
	}

	configCmd.AddCommand(newConfigInitCmd(opts))
	configCmd.AddCommand(newConfigShowCmd(opts))

	return configCmd
}

func newConfigInitCmd(opts *options) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default values",
		Long:  "Write a configuration file holding every setting at its default value. Without a path it is written to the user config directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				var err error
				path, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}

			if err := config.Write(path, config.Default(), force); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", path)
			return nil
		},
	}

	initCmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing file")

	return initCmd
}

func newConfigShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after merging the file, PHOTOMAP_ environment variables and flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return config.Encode(cmd.OutOrStdout(), settings)
		},
	}
}
