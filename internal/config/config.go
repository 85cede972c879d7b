package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	CronSpec string `mapstructure:"SCHEDULER_CRON_SPEC"`
	Timezone string `mapstructure:"SCHEDULER_TIMEZONE"`
	LockTTL  string `mapstructure:"SCHEDULER_LOCK_TTL"`
}

type ChannelsConfig struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `mapstructure:"TWILIO_FROM_NUMBER"`
}

type BusinessConfig struct {
	SendWindowHour     int    `mapstructure:"SEND_WINDOW_HOUR"`
	DispatchBatchSize  int    `mapstructure:"DISPATCH_BATCH_SIZE"`
	MaxSendAttempts    int    `mapstructure:"MAX_SEND_ATTEMPTS"`
	UpcomingWindowDays int    `mapstructure:"UPCOMING_WINDOW_DAYS"`
	OverdueCadenceDays int    `mapstructure:"OVERDUE_CADENCE_DAYS"`
	LateFee            string `mapstructure:"LATE_FEE"`
	UnreachableAge     string `mapstructure:"UNREACHABLE_AGE"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCHEDULER_CRON_SPEC", "0 0 * * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("SCHEDULER_LOCK_TTL", "10m")
	viper.SetDefault("SEND_WINDOW_HOUR", 9)
	viper.SetDefault("DISPATCH_BATCH_SIZE", 50)
	viper.SetDefault("MAX_SEND_ATTEMPTS", 3)
	viper.SetDefault("UPCOMING_WINDOW_DAYS", 7)
	viper.SetDefault("OVERDUE_CADENCE_DAYS", 3)
	viper.SetDefault("LATE_FEE", "5000")
	viper.SetDefault("UNREACHABLE_AGE", "168h")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Business.SendWindowHour < 0 || c.Business.SendWindowHour > 23 {
		return fmt.Errorf("SEND_WINDOW_HOUR must be between 0 and 23")
	}

	if c.Business.DispatchBatchSize <= 0 {
		return fmt.Errorf("DISPATCH_BATCH_SIZE must be greater than 0")
	}

	if c.Business.MaxSendAttempts <= 0 {
		return fmt.Errorf("MAX_SEND_ATTEMPTS must be greater than 0")
	}

	if c.Business.OverdueCadenceDays <= 0 {
		return fmt.Errorf("OVERDUE_CADENCE_DAYS must be greater than 0")
	}

	// Validate late fee
	if _, err := decimal.NewFromString(c.Business.LateFee); err != nil {
		return fmt.Errorf("LATE_FEE must be a valid decimal: %w", err)
	}

	// Validate timezone
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	// Validate durations
	if _, err := time.ParseDuration(c.Scheduler.LockTTL); err != nil {
		return fmt.Errorf("SCHEDULER_LOCK_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Business.UnreachableAge); err != nil {
		return fmt.Errorf("UNREACHABLE_AGE must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetTimezone returns the scheduler timezone as a location
func (c *Config) GetTimezone() *time.Location {
	loc, _ := time.LoadLocation(c.Scheduler.Timezone)
	return loc
}

// GetLateFee returns the configured late fee as decimal
func (c *Config) GetLateFee() decimal.Decimal {
	fee, _ := decimal.NewFromString(c.Business.LateFee)
	return fee
}

// GetLockTTL returns the scheduler lock TTL as duration
func (c *Config) GetLockTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Scheduler.LockTTL)
	return ttl
}

// GetUnreachableAge returns the age past which a pending reminder
// counts as unreachable
func (c *Config) GetUnreachableAge() time.Duration {
	age, _ := time.ParseDuration(c.Business.UnreachableAge)
	return age
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
