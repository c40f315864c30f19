package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/internal/kernel"
	"github.com/shashiranjanraj/bazaar/internal/server"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run pending migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		k, err := kernel.FromConfig(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := k.Close(); err != nil {
				logger.Error("shutdown: release resources", "error", err)
			}
		}()

		if _, err := migration.New(k.DB(), cmd.OutOrStdout()).Run(); err != nil {
			return err
		}

		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = config.AppPort()
		}
		return server.Run(ctx, k.Handler(), ":"+port)
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range routes.Table() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "listen port (default APP_PORT)")
}
