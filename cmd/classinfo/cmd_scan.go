package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/classinfo/classinfo"
	"github.com/dhamidi/classinfo/format"
)

func newScanCmd() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "scan <path|url>...",
		Short: "Decode every class file in directories, jars or URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			src := newSource()
			src.mavenRepo = config.MavenRepo
			s := &scanner{
				src:     src,
				workers: config.Workers,
				opts:    config.Options(),
			}
			report, err := s.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			if dump {
				enc, err := format.NewEncoder(config.Format, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				for _, r := range report.Results {
					if r.Desc == nil {
						continue
					}
					if err := enc.Encode(r.Desc); err != nil {
						return fmt.Errorf("encode %s: %w", r.Location, err)
					}
				}
			}

			report.Print(cmd.ErrOrStderr())
			if len(report.Failures()) > 0 {
				return fmt.Errorf("%d of %d class files failed to decode", len(report.Failures()), len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "write every description to stdout")
	cmd.Flags().StringP("format", "f", "json", fmt.Sprintf("output format for --dump %v", format.Names()))
	cmd.Flags().IntP("workers", "j", 8, "number of class files decoded in parallel")
	cmd.Flags().Bool("code", false, "include the instruction listing of each method")
	cmd.Flags().StringSlice("noise", classinfo.DefaultNoisePrefixes, "dependency prefixes to leave out")
	cmd.Flags().Bool("no-noise-filter", false, "keep every dependency")

	return cmd
}

type scanResult struct {
	Location string
	Desc     *classinfo.ClassDescriptor
	Err      error
}

type scanReport struct {
	Results    []scanResult
	Duplicates int
	// Unreadable collects inputs that could not be listed or extracted.
	Unreadable []scanResult
}

func (r *scanReport) Failures() []scanResult {
	var failed []scanResult
	failed = append(failed, r.Unreadable...)
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *scanReport) Print(w io.Writer) {
	var classes, enums int
	for _, res := range r.Results {
		if res.Desc == nil {
			continue
		}
		classes++
		if res.Desc.IsEnum() {
			enums++
		}
	}

	failures := r.Failures()
	for _, f := range failures {
		fmt.Fprintf(w, "%s %s: %v\n", color.RedString("[ERROR]"), f.Location, f.Err)
	}

	status := color.GreenString("OK")
	if len(failures) > 0 {
		status = color.YellowString("PARTIAL")
	}
	fmt.Fprintf(w, "%s classes=%d enums=%d duplicates=%d errors=%d\n",
		status, classes, enums, r.Duplicates, len(failures))
}

type scanner struct {
	src     *source
	workers int
	opts    []classinfo.Option
}

// Run collects the class files of every location, drops byte-identical
// copies and decodes the rest in parallel. A file that fails to decode is
// recorded in the report and does not stop the others.
func (s *scanner) Run(ctx context.Context, locations []string) (*scanReport, error) {
	report := &scanReport{}
	onError := func(where string, err error) {
		log.Warningf("skip %s: %v", where, err)
		report.Unreadable = append(report.Unreadable, scanResult{Location: where, Err: err})
	}

	seen := map[uint64]bool{}
	var entries []classEntry
	for _, location := range locations {
		found, err := s.src.Collect(ctx, location, onError)
		if err != nil {
			return nil, err
		}
		for _, entry := range found {
			sum, err := contentHash(entry.Data)
			if err != nil {
				return nil, fmt.Errorf("hash %s: %w", entry.Location, err)
			}
			if seen[sum] {
				log.Debugf("duplicate %s", entry.Location)
				report.Duplicates++
				continue
			}
			seen[sum] = true
			entries = append(entries, entry)
		}
	}

	report.Results = make([]scanResult, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			desc, err := classinfo.DecodeBytes(entry.Data, s.opts...)
			if err != nil {
				log.Debugf("decode %s: %v", entry.Location, err)
			}
			report.Results[i] = scanResult{Location: entry.Location, Desc: desc, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
