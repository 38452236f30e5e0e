package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// SMTPGateway delivers notifications over SMTP.
type SMTPGateway struct {
	client   *mail.Client
	from     string
	fromName string
	logger   *slog.Logger
}

var _ EmailGateway = (*SMTPGateway)(nil)

// NewSMTPGateway creates a gateway for cfg. No connection is opened until the
// first message is sent.
func NewSMTPGateway(cfg SMTPConfig, logger *slog.Logger) (*SMTPGateway, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []mail.Option{
		// The TLS policy rewrites port 25 to 587, so the explicit port goes last.
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithPort(cfg.Port),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPGateway{client: client, from: cfg.From, fromName: cfg.FromName, logger: logger}, nil
}

// SendNotification builds a single-part HTML message and sends it.
func (g *SMTPGateway) SendNotification(ctx context.Context, toAddress, subject, htmlBody string) bool {
	msg := mail.NewMsg()
	if err := msg.FromFormat(g.fromName, g.from); err != nil {
		g.logger.Error("invalid sender address", slog.String("from", g.from), slog.Any("error", err))
		return false
	}
	if err := msg.To(toAddress); err != nil {
		g.logger.Warn("invalid recipient address", slog.String("to", toAddress), slog.Any("error", err))
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := g.client.DialAndSendWithContext(ctx, msg); err != nil {
		g.logger.Warn("smtp delivery failed", slog.String("to", toAddress), slog.Any("error", err))
		return false
	}
	return true
}
