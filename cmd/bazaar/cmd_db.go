package main

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/database/seeders"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

// withDB loads config, opens the database for the length of fn and closes it.
func withDB(fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(db *gorm.DB) error {
			_, err := migration.New(db, cmd.OutOrStdout()).Run()
			return err
		})
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(db *gorm.DB) error {
			_, err := migration.New(db, cmd.OutOrStdout()).Rollback()
			return err
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(db *gorm.DB) error {
			return migration.New(db, cmd.OutOrStdout()).PrintStatus()
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(db *gorm.DB) error {
			return seeders.RunAll(cmd.Context(), db, cmd.OutOrStdout())
		})
	},
}
