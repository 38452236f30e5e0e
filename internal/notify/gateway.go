// Package notify fans out email notifications for job lifecycle events.
//
// The Dispatcher runs after a status change has been persisted. Delivery is
// best effort: a failure for one recipient is logged and skipped, never
// returned to the caller and never retried.
package notify

import (
	"context"
	"log/slog"
)

// EmailGateway hands a rendered message to the mail transport.
// Implementations report success as a bool and own any timeout.
type EmailGateway interface {
	SendNotification(ctx context.Context, toAddress, subject, htmlBody string) bool
}

// LogGateway records messages in the log instead of sending them.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a LogGateway. A nil logger uses slog.Default().
func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{logger: logger}
}

var _ EmailGateway = (*LogGateway)(nil)

func (g *LogGateway) SendNotification(ctx context.Context, toAddress, subject, htmlBody string) bool {
	g.logger.InfoContext(ctx, "dry-run notification",
		slog.String("to", toAddress),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(htmlBody)),
	)
	return true
}
