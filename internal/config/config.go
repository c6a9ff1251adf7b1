package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  string
	WriteTimeout string
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	ScheduleTTL string
}

type SchedulerConfig struct {
	LimitRefreshSpec string
	Timezone         string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	DefaultMonthlyRate     string
	ProcessingFeeRate      string
	LimitMultiplier        string
	MemberGuarantors       int
	ChurchOfficials        int
	Witnesses              int
	ReleaseLimitOnImport   bool
	MaxImportRowsPerUpload int
}

type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TokenTTL string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type HealthConfig struct {
	Timeout string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_SCHEDULE_TTL", "1h")
	v.SetDefault("SCHEDULER_LIMIT_REFRESH_SPEC", "0 2 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Africa/Nairobi")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("BUSINESS_DEFAULT_MONTHLY_RATE", "0.018")
	v.SetDefault("BUSINESS_PROCESSING_FEE_RATE", "0.005")
	v.SetDefault("BUSINESS_LIMIT_MULTIPLIER", "3")
	v.SetDefault("BUSINESS_MEMBER_GUARANTORS", 2)
	v.SetDefault("BUSINESS_CHURCH_OFFICIALS", 1)
	v.SetDefault("BUSINESS_WITNESSES", 1)
	v.SetDefault("BUSINESS_RELEASE_LIMIT_ON_IMPORT", true)
	v.SetDefault("BUSINESS_MAX_IMPORT_ROWS", 500)
	v.SetDefault("AUTH_ISSUER", "sacco-engine")
	v.SetDefault("AUTH_AUDIENCE", "sacco-api")
	v.SetDefault("AUTH_TOKEN_TTL", "12h")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

func newViper() *viper.Viper {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func authFrom(v *viper.Viper) AuthConfig {
	return AuthConfig{
		Secret:   v.GetString("AUTH_SECRET"),
		Issuer:   v.GetString("AUTH_ISSUER"),
		Audience: v.GetString("AUTH_AUDIENCE"),
		TokenTTL: v.GetString("AUTH_TOKEN_TTL"),
	}
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := newViper()

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetString("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetString("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DATABASE_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Addr:        v.GetString("REDIS_ADDR"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			ScheduleTTL: v.GetString("REDIS_SCHEDULE_TTL"),
		},
		Scheduler: SchedulerConfig{
			LimitRefreshSpec: v.GetString("SCHEDULER_LIMIT_REFRESH_SPEC"),
			Timezone:         v.GetString("SCHEDULER_TIMEZONE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			DefaultMonthlyRate:     v.GetString("BUSINESS_DEFAULT_MONTHLY_RATE"),
			ProcessingFeeRate:      v.GetString("BUSINESS_PROCESSING_FEE_RATE"),
			LimitMultiplier:        v.GetString("BUSINESS_LIMIT_MULTIPLIER"),
			MemberGuarantors:       v.GetInt("BUSINESS_MEMBER_GUARANTORS"),
			ChurchOfficials:        v.GetInt("BUSINESS_CHURCH_OFFICIALS"),
			Witnesses:              v.GetInt("BUSINESS_WITNESSES"),
			ReleaseLimitOnImport:   v.GetBool("BUSINESS_RELEASE_LIMIT_ON_IMPORT"),
			MaxImportRowsPerUpload: v.GetInt("BUSINESS_MAX_IMPORT_ROWS"),
		},
		Auth: authFrom(v),
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Health: HealthConfig{
			Timeout: v.GetString("HEALTH_CHECK_TIMEOUT"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadAuth reads only the token settings, for tools that never touch the database.
func LoadAuth() (*AuthConfig, error) {
	auth := authFrom(newViper())
	if err := auth.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &auth, nil
}

// Validate checks the token settings
func (a AuthConfig) Validate() error {
	if len(a.Secret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be at least 32 characters")
	}
	if a.Issuer == "" || a.Audience == "" {
		return fmt.Errorf("AUTH_ISSUER and AUTH_AUDIENCE are required")
	}
	if _, err := time.ParseDuration(a.TokenTTL); err != nil {
		return fmt.Errorf("AUTH_TOKEN_TTL must be a valid duration: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if err := c.Auth.Validate(); err != nil {
		return err
	}

	rate, err := decimal.NewFromString(c.Business.DefaultMonthlyRate)
	if err != nil {
		return fmt.Errorf("BUSINESS_DEFAULT_MONTHLY_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("BUSINESS_DEFAULT_MONTHLY_RATE must not be negative")
	}
	if !rate.Equal(rate.Round(6)) {
		return fmt.Errorf("BUSINESS_DEFAULT_MONTHLY_RATE must have at most 6 decimal places")
	}

	fee, err := decimal.NewFromString(c.Business.ProcessingFeeRate)
	if err != nil {
		return fmt.Errorf("BUSINESS_PROCESSING_FEE_RATE must be a valid decimal: %w", err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("BUSINESS_PROCESSING_FEE_RATE must not be negative")
	}

	multiplier, err := decimal.NewFromString(c.Business.LimitMultiplier)
	if err != nil {
		return fmt.Errorf("BUSINESS_LIMIT_MULTIPLIER must be a valid decimal: %w", err)
	}
	if !multiplier.IsPositive() {
		return fmt.Errorf("BUSINESS_LIMIT_MULTIPLIER must be greater than 0")
	}

	if c.Business.MemberGuarantors < 0 || c.Business.ChurchOfficials < 0 || c.Business.Witnesses < 0 {
		return fmt.Errorf("guarantor counts must not be negative")
	}

	if c.Business.MaxImportRowsPerUpload <= 0 {
		return fmt.Errorf("BUSINESS_MAX_IMPORT_ROWS must be greater than 0")
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":  c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT": c.Server.WriteTimeout,
		"REDIS_SCHEDULE_TTL":   c.Redis.ScheduleTTL,
		"HEALTH_CHECK_TIMEOUT": c.Health.Timeout,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be greater than 0")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetDefaultMonthlyRate returns the default monthly interest rate as decimal
func (c *Config) GetDefaultMonthlyRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.DefaultMonthlyRate)
	return rate
}

// GetProcessingFeeRate returns the processing fee rate as decimal
func (c *Config) GetProcessingFeeRate() decimal.Decimal {
	fee, _ := decimal.NewFromString(c.Business.ProcessingFeeRate)
	return fee
}

// GetLimitMultiplier returns the savings multiplier used for loan limits
func (c *Config) GetLimitMultiplier() decimal.Decimal {
	m, _ := decimal.NewFromString(c.Business.LimitMultiplier)
	return m
}

func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

func (c *Config) GetScheduleTTL() time.Duration {
	d, _ := time.ParseDuration(c.Redis.ScheduleTTL)
	return d
}

func (a AuthConfig) GetTokenTTL() time.Duration {
	d, _ := time.ParseDuration(a.TokenTTL)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// GetSchedulerLocation returns the timezone cron schedules are evaluated in
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
