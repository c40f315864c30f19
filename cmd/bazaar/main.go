// Command bazaar runs the marketplace API and its database tooling.
//
//	bazaar serve              # migrate, then serve HTTP until SIGINT/SIGTERM
//	bazaar migrate            # apply pending migrations
//	bazaar migrate:rollback   # roll back the last batch
//	bazaar migrate:status     # list migrations
//	bazaar seed               # run seeders
//	bazaar route:list         # print the route table
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	_ "github.com/shashiranjanraj/bazaar/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bazaar",
	Short:         "Marketplace API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
