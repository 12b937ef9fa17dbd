package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "kernel",
		Short: "Serve and inspect a convention-routed application",
		Long: `kernel runs an application whose requests are routed through an
address table and conventional controller discovery.

The same routing is available from the command line with "kernel route",
which prints what an HTTP request for the given segments would return.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		routeCmd(&configPath),
		routesCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}
