package main

import (
	"github.com/spf13/cobra"

	"simcontrol/pkg/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitDB()
			config.ExecuteMigrations()
			return nil
		},
	}
}

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.InitDB()
			config.RollbackMigration()
			return nil
		},
	}
}
