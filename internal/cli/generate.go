package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/relval/internal/config"
	"github.com/SmitUplenchwar2687/relval/internal/generate"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

func newGenerateCmd() *cobra.Command {
	var (
		output   string
		format   string
		tz       string
		count    int
		duration time.Duration
		pattern  string
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample input and config",
		Long: `Generates sample data for testing and experimentation.

Use "generate lines" to create timestamped sample records.
Use "generate config" to create an example config JSON file.`,
	}

	linesCmd := &cobra.Command{
		Use:   "lines",
		Short: "Generate timestamped sample records",
		Long: `Creates records with a leading timestamp field followed by a payload.

Patterns:
  steady    Evenly spaced records
  burst     Concentrated bursts with quiet periods
  ramp      Gradually increasing record rate

Relative timestamps start at 0.`,
		Example: `  relval generate lines --count 100 --duration 10s > sample.log
  relval generate lines --format epoch --pattern burst --output burst.log
  relval generate lines --format relative --count 50 | relval -z "5 / 1s"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := timestamp.ParseFormat(format)
			if err != nil {
				return err
			}
			loc := time.Local
			if tz != "" {
				if loc, err = time.LoadLocation(tz); err != nil {
					return fmt.Errorf("invalid --tz value %q: %w", tz, err)
				}
			}

			start := time.Now().Truncate(time.Second)
			lines, err := generate.Lines(generate.Options{
				Count:    count,
				Duration: duration,
				Pattern:  pattern,
				Start:    start,
				Seed:     seed,
			})
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating file: %w", err)
				}
				defer file.Close()
				w = file
			}

			x := timestamp.NewExtractor(f, start, loc)
			if err := generate.Write(w, x, lines); err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Generated %d %s records to %s\n", len(lines), f, output)
			}
			return nil
		},
	}

	linesCmd.Flags().StringVar(&output, "output", "-", "output file path (- for stdout)")
	linesCmd.Flags().StringVar(&format, "format", "calendar", "timestamp format (calendar, epoch, relative)")
	linesCmd.Flags().StringVar(&tz, "tz", "", "time zone for calendar timestamps (default local)")
	linesCmd.Flags().IntVar(&count, "count", generate.DefaultOptions().Count, "number of records to generate")
	linesCmd.Flags().DurationVar(&duration, "duration", generate.DefaultOptions().Duration, "time span covered by the records")
	linesCmd.Flags().StringVar(&pattern, "pattern", generate.PatternSteady, "record pattern (steady, burst, ramp)")
	linesCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	var configOutput string
	configCmd := &cobra.Command{
		Use:     "config",
		Short:   "Generate an example config JSON file",
		Example: `  relval generate config --output relval.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteExample(configOutput); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Generated example config at %s\n", configOutput)
			return nil
		},
	}

	configCmd.Flags().StringVar(&configOutput, "output", "relval.json", "output file path")

	cmd.AddCommand(linesCmd, configCmd)
	return cmd
}
