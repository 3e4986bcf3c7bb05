package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"simplestorage/internal/config"
	"simplestorage/internal/node"
	"simplestorage/internal/telemetry"
)

const version = "0.1.0"

func serveCmd() *cobra.Command {
	cfg := config.Default()
	var backend string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a node hosting SimpleStorage contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.ParseBackend(backend)
			if err != nil {
				return err
			}
			cfg.Backend = b
			cfg.LogLevel = logLevel
			cfg.LogFormat = logFormat

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.NodeID, "node-id", cfg.NodeID, "node identifier used in logs")
	cmd.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "gRPC listen address")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-listen", cfg.MetricsAddr, "Prometheus metrics listen address (empty to disable)")
	cmd.Flags().StringVar(&backend, "backend", string(cfg.Backend), "storage backend (memory or leveldb)")
	cmd.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "LevelDB data directory")
	cmd.Flags().StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", cfg.OTLPEndpoint, "OTLP/gRPC trace collector endpoint (empty to disable)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := telemetry.InitTracer(ctx, "simplestorage", version, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracer()

	n, err := node.NewNode(cfg)
	if err != nil {
		return err
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", n.MetricsHandler())
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(n.Start)
	if metricsServer != nil {
		g.Go(func() error {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		n.Stop()
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}
