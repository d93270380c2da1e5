package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/leasemap/internal/observability"
	"github.com/KaramelBytes/leasemap/internal/render"
	"github.com/KaramelBytes/leasemap/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	srvAddr  string
	srvTiles string
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the interactive lease explorer",
	Long: `Serve loads and normalizes the lease table once, then serves an explorer page with
range filters for square footage, safety and accessibility. GET /healthz and GET /metrics
are exposed alongside the page.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		f := cmd.Flags()
		if f.Changed("addr") {
			c.HTTPAddr = srvAddr
		}
		if f.Changed("tiles") {
			c.MapTiles = srvTiles
		}

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		ds, err := loadDataset(inputPath(args, c), c, logger)
		if err != nil {
			return err
		}
		ropt := renderOptions(c)
		ropt.Height = "80vh"
		renderer, err := render.New(ropt, nil)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(c.HTTPAddr, server.Dataset{Records: ds.records, Bounds: ds.bounds}, renderer, server.Options{
			Metrics:  observability.NewMetrics(),
			Gatherer: prometheus.DefaultGatherer,
			Logger:   logger,
		})

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Explorer listening on %s (%d leases)\n", c.HTTPAddr, len(ds.records))

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("explorer: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down explorer")
		timeout := time.Duration(c.ShutdownTimeoutSec) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("explorer stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides http_addr)")
	serveCmd.Flags().StringVar(&srvTiles, "tiles", "", "tile layer for the explorer map")
}
