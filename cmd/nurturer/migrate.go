package main

import (
	"fmt"

	"github.com/spf13/cobra"

	idb "nurturing_engine/internal/infra/database"
	"nurturing_engine/internal/infra/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		if err := idb.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Log.Info("Database migrations applied.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
