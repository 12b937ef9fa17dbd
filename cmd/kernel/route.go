package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kernel/pkg/logger"
)

func routeCmd(configPath *string) *cobra.Command {
	var (
		method  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "route [segments...] [--key=value...]",
		Short: "Dispatch a path from the command line",
		Long: `Dispatch segments through the address table and controllers and print
the response. Arguments of the form --key=value after "--" become query
values. End the last segment in .json or .xml to select the format.

  kernel route users show 42
  kernel route fr/users/42.json
  kernel route --method POST -- users save --name=ada`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			log := logger.NewNope()
			if verbose {
				log = logger.New(
					logger.WithWriter(cmd.ErrOrStderr()),
					logger.WithFormat(logger.FormatText),
					logger.WithLevel(slog.LevelDebug),
				)
			}

			app, cleanup, err := buildApp(cmd.Context(), cfg, log, appOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = cleanup(cmd.Context()) }()

			return app.Execute(cmd.Context(), cmd.OutOrStdout(), method, args...)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "request method")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log routing decisions to stderr")

	return cmd
}
