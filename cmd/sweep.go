package cmd

import (
	"context"
	"errors"
	"log/slog"

	"repairdesk/internal/app"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Send overdue job reminders once and exit",
	RunE:  sweep,
}

func sweep(_ *cobra.Command, _ []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := handleSignals(context.Background())
	defer stop()

	application, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer application.Close()

	sweeper, err := newSweeper(application)
	if err != nil {
		return err
	}
	if !sweeper.RunOnce(ctx) {
		return errors.New("overdue sweep did not complete")
	}
	return nil
}
