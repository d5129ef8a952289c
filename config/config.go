package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Forecast ForecastConfig
	Pipeline PipelineConfig
	Alerts   AlertsConfig
	Ingest   IngestConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	RateLimitPerMinute      int
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
}

// ForecastConfig configures the connection to the demand model service.
type ForecastConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// PipelineConfig configures the background alert sweep loop.
type PipelineConfig struct {
	SweepInterval time.Duration
	MaxConcurrent int
	RateLimit     float64
}

// AlertsConfig configures notification channels. The enable flags are
// only the startup defaults; runtime state lives in alerts.Settings.
type AlertsConfig struct {
	EmailEnabled bool
	SMSEnabled   bool
	AdminEmail   string
	AdminPhone   string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SMSGatewayURL string
	SMSAccountID  string
	SMSAuthToken  string
	SMSFrom       string
}

type IngestConfig struct {
	DatasetURL string
	RowLimit   int
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// Load loads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			RateLimitPerMinute:      getEnvInt("SERVER_RATE_LIMIT_PER_MINUTE", 120),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Forecast: ForecastConfig{
			URL:      getEnv("FORECAST_URL", ""),
			Timeout:  getEnvDuration("FORECAST_TIMEOUT", 30*time.Second),
			CacheTTL: getEnvDuration("FORECAST_CACHE_TTL", 10*time.Minute),
		},
		Pipeline: PipelineConfig{
			SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),
			MaxConcurrent: getEnvInt("SWEEP_MAX_CONCURRENT", 1),
			RateLimit:     getEnvFloat("SWEEP_RATE_LIMIT", 1.0),
		},
		Alerts: AlertsConfig{
			EmailEnabled:  getEnvBool("ALERT_EMAIL_ENABLED", false),
			SMSEnabled:    getEnvBool("ALERT_SMS_ENABLED", false),
			AdminEmail:    getEnv("ALERT_ADMIN_EMAIL", ""),
			AdminPhone:    getEnv("ALERT_ADMIN_PHONE", ""),
			SMTPHost:      getEnv("SMTP_HOST", ""),
			SMTPPort:      getEnvInt("SMTP_PORT", 587),
			SMTPFrom:      getEnv("SMTP_FROM", ""),
			SMTPUsername:  getEnv("SMTP_USERNAME", ""),
			SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
			SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
			SMSAccountID:  getEnv("SMS_ACCOUNT_ID", ""),
			SMSAuthToken:  getEnv("SMS_AUTH_TOKEN", ""),
			SMSFrom:       getEnv("SMS_FROM", ""),
		},
		Ingest: IngestConfig{
			DatasetURL: getEnv("DATASET_URL", ""),
			RowLimit:   getEnvInt("DATASET_ROW_LIMIT", 50000),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Pipeline.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	if c.Pipeline.MaxConcurrent < 1 {
		return fmt.Errorf("sweep max concurrent must be at least 1")
	}
	if c.Forecast.Timeout <= 0 {
		return fmt.Errorf("forecast timeout must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
