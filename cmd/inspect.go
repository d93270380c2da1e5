package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/leasemap/internal/lease"
	"github.com/KaramelBytes/leasemap/internal/publish"
	"github.com/spf13/cobra"
)

var (
	insOutputPath string
	insExportPath string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Report column resolution and score statistics for a lease table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ds, err := loadDataset(inputPath(args, c), c, logger)
		if err != nil {
			return err
		}
		md := inspectReport(ds)

		if insExportPath != "" {
			var buf bytes.Buffer
			if err := ds.result.Frame.WriteCSV(&buf); err != nil {
				return fmt.Errorf("export csv: %w", err)
			}
			if err := publish.SafeWriteFile(insExportPath, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported augmented table to %s\n", insExportPath)
		}
		if insOutputPath != "" {
			if err := publish.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

// inspectReport appends the default explorer filter ranges to the dataset report.
func inspectReport(ds *dataset) string {
	var b strings.Builder
	b.WriteString(ds.result.Markdown(ds.name))
	b.WriteString("\n[DEFAULT FILTERS]\n")
	fmt.Fprintf(&b, "- square footage: %s to %s (slider up to %s, step %g)\n",
		lease.Thousands(int(ds.bounds.SF.Low)), lease.Thousands(int(ds.bounds.SFDefault)),
		lease.Thousands(int(ds.bounds.SF.High)), ds.bounds.SFStep)
	fmt.Fprintf(&b, "- safety: %.2f to %.2f (step %g)\n", ds.bounds.Score.Low, ds.bounds.Score.High, ds.bounds.ScoreStep)
	fmt.Fprintf(&b, "- accessibility: %.2f to %.2f (step %g)\n", ds.bounds.Score.Low, ds.bounds.Score.High, ds.bounds.ScoreStep)
	shown := len(ds.bounds.Filter().Apply(ds.records))
	fmt.Fprintf(&b, "- %s\n", lease.Summary(shown, len(ds.records)))
	return b.String()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "write the report to this file instead of stdout")
	inspectCmd.Flags().StringVar(&insExportPath, "export", "", "write the augmented table (with derived columns) to this CSV")
}
