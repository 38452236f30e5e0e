package app

import (
	"context"
	"fmt"
	"log/slog"

	"repairdesk/config"
	"repairdesk/internal/database"
	"repairdesk/internal/notify"
	"repairdesk/internal/services"
	"repairdesk/internal/storage"
	"repairdesk/internal/storage/cache"
	"repairdesk/internal/storage/postgres"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Application holds core application dependencies.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *pgxpool.Pool
	RedisClient *redis.Client // nil when Redis is not configured
	Validator   *validator.Validate

	Dispatcher *notify.Dispatcher
	Workflow   services.JobWorkflowService

	approvals *cache.ApprovalCache
}

// New connects to the backing stores and wires the lifecycle engine.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.NewConnectionPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}

	gateway, err := NewGateway(cfg.Mail, logger)
	if err != nil {
		db.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}

	jobRepo := postgres.NewJobRepo(db)
	var repo storage.JobRepository = jobRepo
	var approvals *cache.ApprovalCache
	if cfg.Cache.ApprovalTTL > 0 {
		approvals = cache.NewApprovalCache(jobRepo, cfg.Cache.ApprovalTTL)
		repo = approvals
	}

	dispatcher := notify.NewDispatcher(repo, gateway,
		notify.WithLogger(logger.With(slog.String("component", "notify"))),
		notify.WithReviewWindowDays(cfg.Notifications.ReviewWindowDays),
		notify.WithOverdueThresholdDays(cfg.Notifications.OverdueThresholdDays),
		notify.WithPortalURL(cfg.Notifications.PortalURL),
	)
	validatorEngine := services.NewTransitionValidator(repo,
		services.WithValidatorLogger(logger.With(slog.String("component", "validator"))))

	return &Application{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		RedisClient: rdb,
		Validator:   validator.New(),
		Dispatcher:  dispatcher,
		Workflow:    services.NewJobWorkflowService(repo, jobRepo, validatorEngine, dispatcher, logger),
		approvals:   approvals,
	}, nil
}

// NewGateway picks the SMTP gateway, or the logging gateway when mail is in
// dry-run mode or no host is configured.
func NewGateway(cfg config.MailConfig, logger *slog.Logger) (notify.EmailGateway, error) {
	if cfg.DryRun || cfg.Host == "" {
		logger.Info("Mail: dry-run gateway in use, notifications will only be logged")
		return notify.NewLogGateway(logger), nil
	}
	gw, err := notify.NewSMTPGateway(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
		Timeout:  cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mail gateway: %w", err)
	}
	return gw, nil
}

// Close releases the database pool, the Redis client and the caches.
func (a *Application) Close() {
	if a.approvals != nil {
		a.approvals.Stop()
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Warn("App: error closing Redis client", slog.Any("error", err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
