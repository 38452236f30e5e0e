package cmd

import (
	"context"
	"log/slog"
	"time"

	"repairdesk/internal/app"
	"repairdesk/internal/scheduler"
	"repairdesk/internal/server"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled overdue sweep",
	RunE:  serve,
}

func serve(_ *cobra.Command, _ []string) error {
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

	var sweeper *scheduler.OverdueSweeper
	if cfg.Sweep.Enabled {
		sweeper, err = newSweeper(application)
		if err != nil {
			return err
		}
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
	}

	srv := server.NewServer(application)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err = <-serverErr:
		if err != nil {
			slog.Error("Server stopped unexpectedly", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sweeper != nil {
		if stopErr := sweeper.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("Sweeper did not stop cleanly", slog.Any("error", stopErr))
		}
	}
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("Server did not shut down cleanly", slog.Any("error", shutdownErr))
	}

	slog.Info("Application gracefully stopped.")
	return err
}

func newSweeper(application *app.Application) (*scheduler.OverdueSweeper, error) {
	opts := []scheduler.Option{
		scheduler.WithLeaseTTL(application.Config.Sweep.LockTTL),
		scheduler.WithLogger(application.Logger.With(slog.String("component", "scheduler"))),
	}
	if application.RedisClient != nil {
		opts = append(opts, scheduler.WithLocker(scheduler.NewRedisLocker(application.RedisClient)))
	}
	return scheduler.NewOverdueSweeper(application.Workflow, application.Config.Sweep.Schedule, opts...)
}
