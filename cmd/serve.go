package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/logger"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/metrics"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/server"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

var (
	// server network config
	listenAddr  string
	metricsAddr string

	// TLS/mTLS flags
	enableMTLS     bool
	serverCertFile string
	serverKeyFile  string
	serverCAFile   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway gRPC server",
	Long:  "Expose the configured store over gRPC so other userdir instances can use it with --driver remote.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gw, cfg, err := openGateway(ctx, cmd)
		if err != nil {
			return err
		}
		defer gw.Close()

		flags := cmd.Flags()
		if flags.Changed("addr") || cfg.Server.Addr == "" {
			cfg.Server.Addr = listenAddr
		}
		if flags.Changed("metrics-addr") {
			cfg.Server.MetricsAddr = metricsAddr
		}
		if enableMTLS {
			cfg.Server.TLS.Cert, cfg.Server.TLS.Key, cfg.Server.TLS.CA = serverCertFile, serverKeyFile, serverCAFile
		}

		log := logger.Default().With("server")
		var served store.Gateway = gw
		g, ctx := errgroup.WithContext(ctx)
		if cfg.Server.MetricsAddr != "" {
			reg := metrics.NewRegistry()
			served = metrics.New(reg).Instrument(gw)
			g.Go(func() error { return metrics.Serve(ctx, cfg.Server.MetricsAddr, reg, log) })
		}

		tlsCfg := cfg.Server.TLS
		g.Go(func() error {
			switch {
			case tlsCfg.Enabled():
				if tlsCfg.Cert == "" || tlsCfg.Key == "" || tlsCfg.CA == "" {
					return fmt.Errorf("mtls mode requires --cert, --key, and --ca")
				}
				log.Info("Starting gRPC server with mTLS on %s", cfg.Server.Addr)
				return server.RunTLS(ctx, cfg.Server.Addr, tlsCfg.Cert, tlsCfg.Key, tlsCfg.CA, served, log)
			default:
				log.Info("Starting insecure gRPC server on %s", cfg.Server.Addr)
				return server.Run(ctx, cfg.Server.Addr, served, log)
			}
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr,
		"addr", "a", "0.0.0.0:9090", "Address to listen on")

	serveCmd.Flags().StringVar(&metricsAddr,
		"metrics-addr", "", "Address for the Prometheus /metrics listener (disabled when empty)")

	serveCmd.Flags().BoolVar(&enableMTLS,
		"mtls", false, "Enable mutual TLS (requires --cert, --key, --ca)")

	serveCmd.Flags().StringVar(&serverCertFile,
		"cert", "", "Path to server certificate (PEM)")

	serveCmd.Flags().StringVar(&serverKeyFile,
		"key", "", "Path to server private key (PEM)")

	serveCmd.Flags().StringVar(&serverCAFile,
		"ca", "", "Path to CA certificate for verifying client certificates (PEM)")

	rootCmd.AddCommand(serveCmd)
}
