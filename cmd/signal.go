package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func handleSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
