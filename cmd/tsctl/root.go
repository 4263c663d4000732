package main

import (
	"fmt"

	"timesheet/internal/config"
	"timesheet/internal/logger"
	"timesheet/internal/model"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "tsctl",
	Short: "Timesheet administration",
	Long: `tsctl runs the one-off administrative jobs of the timesheet service:
schema migration, bulk spreadsheet import and admin account setup.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (e.g. etc/config-dev.yaml)")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// openDB loads config, installs the logger and returns a migrated database.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg := config.Load(configFile)
	logger.Init(cfg.Log)
	db, err := cfg.OpenGormDB()
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := openDB(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}
