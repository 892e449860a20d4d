package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classinfo/classinfo"
	"github.com/dhamidi/classinfo/format"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <class-file|url>...",
		Short: "Describe one or more class files",
		Long: `Describe one or more class files. Inputs are local paths or URLs
(file://, mem://, s3://, gs://) or maven:group:artifact:version coordinates.
Jar and zip archives are expanded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			enc, err := format.NewEncoder(config.Format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			src := newSource()
			src.mavenRepo = config.MavenRepo
			opts := config.Options()
			for _, location := range args {
				entries, err := src.Collect(cmd.Context(), location, func(where string, err error) {
					log.Warningf("skip %s: %v", where, err)
				})
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return fmt.Errorf("no class files in %s", location)
				}
				for _, entry := range entries {
					desc, err := classinfo.DecodeBytes(entry.Data, opts...)
					if err != nil {
						return fmt.Errorf("decode %s: %w", entry.Location, err)
					}
					if err := enc.Encode(desc); err != nil {
						return fmt.Errorf("encode %s: %w", config.Format, err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "json", fmt.Sprintf("output format %v", format.Names()))
	cmd.Flags().Bool("code", false, "include the instruction listing of each method")
	cmd.Flags().StringSlice("noise", classinfo.DefaultNoisePrefixes, "dependency prefixes to leave out")
	cmd.Flags().Bool("no-noise-filter", false, "keep every dependency")

	return cmd
}
