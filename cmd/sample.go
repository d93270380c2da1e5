package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/leasemap/internal/publish"
	"github.com/KaramelBytes/leasemap/internal/sample"
	"github.com/spf13/cobra"
)

var (
	smpRows   int
	smpSeed   int64
	smpBlank  int
	smpOutput string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic Manhattan lease CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if smpRows <= 0 {
			return fmt.Errorf("--rows must be positive")
		}
		if smpBlank < 0 || smpBlank > 100 {
			return fmt.Errorf("--blank must be between 0 and 100")
		}
		opt := sample.DefaultOptions()
		opt.Rows = smpRows
		opt.Seed = smpSeed
		opt.BlankPercent = smpBlank

		if smpOutput == "" || smpOutput == "-" {
			return sample.Write(cmd.OutOrStdout(), opt)
		}
		var buf bytes.Buffer
		if err := sample.Write(&buf, opt); err != nil {
			return err
		}
		if err := publish.SafeWriteFile(smpOutput, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d sample leases to %s\n", opt.Rows, smpOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	d := sample.DefaultOptions()
	sampleCmd.Flags().IntVarP(&smpRows, "rows", "n", d.Rows, "number of lease rows")
	sampleCmd.Flags().Int64Var(&smpSeed, "seed", d.Seed, "random seed; the same seed yields the same file")
	sampleCmd.Flags().IntVar(&smpBlank, "blank", d.BlankPercent, "percent of crime_rate cells left empty")
	sampleCmd.Flags().StringVarP(&smpOutput, "output", "o", "manhattan_geo_access.csv", "output path, or - for stdout")
}
