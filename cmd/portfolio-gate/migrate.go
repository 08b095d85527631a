package main

import (
	"github.com/spf13/cobra"
	"github.com/tendant/portfolio-gate/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Up(cmd.Context(), db); err != nil {
			logger.Error("migrate up failed", "error", err)
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, logger, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrations.Down(cmd.Context(), db); err != nil {
			logger.Error("migrate down failed", "error", err)
			return err
		}
		logger.Info("migration rolled back")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _, db, err := setup()
		if err != nil {
			return err
		}
		defer db.Close()

		return migrations.Status(cmd.Context(), db)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}
