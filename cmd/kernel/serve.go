package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kernel"
	"github.com/dmitrymomot/kernel/middlewares"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		address string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and block until SIGINT or SIGTERM.

Liveness and readiness probes are served at /health/live and /health/ready.
With --metrics, Prometheus metrics are served at /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}

			log := cfg.Logger(middlewares.RequestIDExtractor())
			app, _, err := buildApp(cmd.Context(), cfg, log, appOptions{metrics: metrics})
			if err != nil {
				return err
			}

			return app.Run(cfg.Server.Address,
				kernel.Logger(log),
				kernel.WithContext(cmd.Context()),
				kernel.Timeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
				kernel.ShutdownTimeout(cfg.Server.ShutdownTimeout),
			)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "listen address (overrides server.address)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "serve Prometheus metrics at /metrics")

	return cmd
}
