package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/kernel/pkg/router"
)

func routesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the address table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			addrs, err := cfg.Addresses()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCOPE\tMETHODS\tPATTERN\tTARGET")
			err = addrs.Walk(func(scope string, a *router.Action) error {
				if scope == "" {
					scope = "*"
				}
				methods := router.MethodAny
				if !a.IsAnyHTTPMethod() {
					methods = strings.Join(a.Methods(), ",")
				}
				_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", scope, methods, a.Pattern(), a.Target())
				return err
			})
			if err != nil {
				return err
			}
			return tw.Flush()
		},
	}
}
