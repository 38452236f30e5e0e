package cmd

import (
	"context"
	"log/slog"
	"time"

	"repairdesk/internal/database"
	"repairdesk/internal/database/migrations"

	"github.com/spf13/cobra"
)

var migrateDown bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all migrations instead of applying them")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  "Apply the embedded schema migrations to the configured database",
	RunE:  migrate,
}

func migrate(_ *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrateDown {
		slog.Warn("Rolling back all migrations", slog.String("database", cfg.DB.Name))
		return migrations.RunMigrationsDown(ctx, pool)
	}
	slog.Info("Running migrations", slog.String("database", cfg.DB.Name))
	return migrations.RunMigrationsUp(ctx, pool)
}
