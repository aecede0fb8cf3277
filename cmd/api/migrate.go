// cmd/api/migrate.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/util"
	"fintrack/pkg/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or revert the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(db.Up), string(db.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := cfg.ValidateMigrate(); err != nil {
				return err
			}
			util.InitLogger(cfg.LogLevel)
			logger := util.GetLogger()

			conn, err := db.NewPostgresDB(cmd.Context(), cfg.DB)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer conn.Close()

			dir := db.Direction(args[0])
			if err := db.RunMigrations(conn.DB, dir); err != nil {
				return err
			}
			logger.Info("Migrations applied", "direction", dir, "database", cfg.DB.DBName)
			return nil
		},
	}
}
