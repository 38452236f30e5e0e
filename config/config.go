package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	DB            DBConfig           `mapstructure:"database"`
	Redis         RedisConfig        `mapstructure:"redis"`
	CORS          CORSConfig         `mapstructure:"cors"`
	JWT           JWTConfig          `mapstructure:"jwt"`
	Mail          MailConfig         `mapstructure:"mail"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Sweep         SweepConfig        `mapstructure:"sweep"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Log           LogConfig          `mapstructure:"log"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// DBConfig holds database specific configuration
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN builds the postgres connection URL.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig holds Redis specific configuration. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CORSConfig holds CORS specific configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// MailConfig configures the SMTP gateway. With DryRun set, or no Host,
// notifications are logged instead of sent.
type MailConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	FromName string        `mapstructure:"from_name"`
	DryRun   bool          `mapstructure:"dry_run"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type NotificationConfig struct {
	ReviewWindowDays     int    `mapstructure:"review_window_days"`
	OverdueThresholdDays int    `mapstructure:"overdue_threshold_days"`
	PortalURL            string `mapstructure:"portal_url"`
}

// SweepConfig schedules the overdue sweep. Schedule is a standard 5-field cron spec.
type SweepConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// CacheConfig controls in-process caching. A zero ApprovalTTL disables the approval cache.
type CacheConfig struct {
	ApprovalTTL time.Duration `mapstructure:"approval_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
	File   string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "repairdesk")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// For production, this SHOULD be overridden by environment variables.
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("jwt.secret", "")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@repairdesk.local")
	v.SetDefault("mail.from_name", "RepairDesk")
	v.SetDefault("mail.dry_run", false)
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("notifications.review_window_days", 3)
	v.SetDefault("notifications.overdue_threshold_days", 7)
	v.SetDefault("notifications.portal_url", "")

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.schedule", "0 7 * * *")
	v.SetDefault("sweep.lock_ttl", 10*time.Minute)

	v.SetDefault("cache.approval_ttl", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

// Load configuration from file and environment variables. configFile, when
// not empty, replaces the default search path.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	setDefaults(v)

	// REPAIRDESK_DATABASE_HOST overrides database.host, etc.
	v.SetEnvPrefix("REPAIRDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		slog.Info("Config file not found, using defaults and environment variables.")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Environment values arrive as one comma-separated string.
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}
	for i, origin := range cfg.CORS.AllowedOrigins {
		cfg.CORS.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		slog.Int("server_port", cfg.Server.Port),
		slog.String("db_host", cfg.DB.Host),
		slog.Bool("redis", cfg.Redis.Addr != ""),
		slog.Bool("mail_dry_run", cfg.Mail.DryRun || cfg.Mail.Host == ""),
		slog.Any("allowed_origins", cfg.CORS.AllowedOrigins),
	)
	return &cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	if c.Notifications.ReviewWindowDays < 0 {
		return fmt.Errorf("notifications.review_window_days must not be negative, got %d", c.Notifications.ReviewWindowDays)
	}
	if c.Notifications.OverdueThresholdDays < 1 {
		return fmt.Errorf("notifications.overdue_threshold_days must be at least 1, got %d", c.Notifications.OverdueThresholdDays)
	}
	if c.Sweep.Enabled && strings.TrimSpace(c.Sweep.Schedule) == "" {
		return errors.New("sweep.schedule is required when the sweep is enabled")
	}
	if c.DB.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be at least 1, got %d", c.DB.MaxConns)
	}
	return nil
}
