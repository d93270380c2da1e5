package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/KaramelBytes/leasemap/internal/lease"
	"github.com/KaramelBytes/leasemap/internal/publish"
	"github.com/KaramelBytes/leasemap/internal/render"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	renOutputDir string
	renTiles     string
	renZoom      int
	renS3Bucket  string
	renS3Prefix  string
	renQuiet     bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render the lease and building maps to static HTML",
	Long: `Render reads the lease table, normalizes it and writes two self-contained pages:
one marker per lease (leases_map.html) and one circle per building (buildings_map.html).
When s3_bucket is configured the pages are uploaded as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		f := cmd.Flags()
		if f.Changed("output-dir") {
			c.OutputDir = renOutputDir
		}
		if f.Changed("tiles") {
			c.MapTiles = renTiles
		}
		if f.Changed("zoom") {
			c.MapZoom = renZoom
		}
		if f.Changed("s3-bucket") {
			c.S3Bucket = renS3Bucket
		}
		if f.Changed("s3-prefix") {
			c.S3Prefix = renS3Prefix
		}

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		renderer, err := render.New(renderOptions(c), nil)
		if err != nil {
			return err
		}

		bar := newStepBar(cmd.ErrOrStderr(), 4, renQuiet)
		bar.Describe("loading")
		ds, err := loadDataset(inputPath(args, c), c, logger)
		if err != nil {
			return err
		}
		// The output dir is created only once there is something to write.
		sink, err := buildSink(cmd, c.OutputDir, c.S3Bucket, c.S3Prefix, c.S3Region)
		if err != nil {
			return err
		}
		_ = bar.Add(1)

		buildings := lease.Aggregate(ds.records)
		pages := []mapPage{
			{c.LeasesOutput, len(ds.records), func(w io.Writer) error { return renderer.LeaseMap(w, ds.records) }},
			{c.BuildingsOutput, len(buildings), func(w io.Writer) error { return renderer.BuildingMap(w, buildings) }},
		}
		_ = bar.Add(1)

		written := make([]string, 0, len(pages))
		for _, p := range pages {
			bar.Describe("rendering " + p.name)
			var buf bytes.Buffer
			if err := p.draw(&buf); err != nil {
				return fmt.Errorf("render %s: %w", p.name, err)
			}
			if err := sink.Put(cmd.Context(), p.name, buf.Bytes()); err != nil {
				return err
			}
			logger.Info("wrote map", "name", p.name, "markers", p.count, "bytes", buf.Len())
			written = append(written, p.name)
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		out := cmd.OutOrStdout()
		for _, name := range written {
			for _, loc := range sink.Locations(name) {
				fmt.Fprintf(out, "✓ Wrote %s\n", loc)
			}
		}
		fmt.Fprintf(out, "%s leases, %s buildings\n", lease.Thousands(len(ds.records)), lease.Thousands(len(buildings)))
		return nil
	},
}

type mapPage struct {
	name  string
	count int
	draw  func(io.Writer) error
}

// buildSink always writes to dir and adds an S3 upload when bucket is set.
func buildSink(cmd *cobra.Command, dir, bucket, prefix, region string) (publish.MultiSink, error) {
	ds, err := publish.NewDirSink(dir)
	if err != nil {
		return nil, err
	}
	sink := publish.MultiSink{ds}
	if bucket != "" {
		s3, err := publish.NewS3SinkFromEnv(cmd.Context(), region, bucket, prefix)
		if err != nil {
			return nil, err
		}
		sink = append(sink, s3)
	}
	return sink, nil
}

// newStepBar reports coarse progress on w; quiet hides it.
func newStepBar(w io.Writer, steps int, quiet bool) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(!quiet),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renOutputDir, "output-dir", "o", "", "directory for the generated HTML (overrides config)")
	renderCmd.Flags().StringVar(&renTiles, "tiles", "", "tile layer: cartodbpositron, cartodbdark_matter, openstreetmap")
	renderCmd.Flags().IntVar(&renZoom, "zoom", 0, "initial zoom level")
	renderCmd.Flags().StringVar(&renS3Bucket, "s3-bucket", "", "also upload the pages to this S3 bucket")
	renderCmd.Flags().StringVar(&renS3Prefix, "s3-prefix", "", "key prefix for S3 uploads")
	renderCmd.Flags().BoolVarP(&renQuiet, "quiet", "q", false, "hide the progress bar")
}
