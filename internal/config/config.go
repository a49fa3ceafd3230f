package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Woo      WooConfig
	Tax      TaxConfig
	Cron     CronConfig
	Intent   IntentConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// StripeConfig holds payment provider credentials.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// WooConfig holds the WooCommerce REST API connection settings.
type WooConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	TimeoutSeconds int
}

// TaxConfig controls where the jurisdiction rate table is loaded from.
// The table is CMS-managed and exported as JSON, fetched from S3 when
// enabled, with a local file fallback and built-in defaults.
type TaxConfig struct {
	RatesFile string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Key     string
}

// CronConfig holds the shared secret for maintenance endpoints.
type CronConfig struct {
	Secret string
}

// IntentConfig bounds the lifetime of persisted validated snapshots.
type IntentConfig struct {
	TTLMinutes   int
	SweepMinutes int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "farmstand"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Woo: WooConfig{
			BaseURL:        getEnv("WOO_BASE_URL", ""),
			ConsumerKey:    getEnv("WOO_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("WOO_CONSUMER_SECRET", ""),
			TimeoutSeconds: getEnvAsInt("WOO_TIMEOUT_SECONDS", 15),
		},
		Tax: TaxConfig{
			RatesFile: getEnv("TAX_RATES_FILE", "data/tax/rates.json"),
			S3Enabled: getEnvAsBool("TAX_S3_ENABLED", false),
			S3Bucket:  getEnv("TAX_S3_BUCKET", ""),
			S3Region:  getEnv("TAX_S3_REGION", "ca-central-1"),
			S3Key:     getEnv("TAX_S3_KEY", "tax/rates.json"),
		},
		Cron: CronConfig{
			Secret: getEnv("CRON_SECRET", ""),
		},
		Intent: IntentConfig{
			TTLMinutes:   getEnvAsInt("INTENT_TTL_MINUTES", 60),
			SweepMinutes: getEnvAsInt("INTENT_SWEEP_MINUTES", 15),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe secret key is required")
	}

	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("stripe webhook secret is required")
	}

	if c.Woo.BaseURL == "" {
		return fmt.Errorf("woocommerce base URL is required")
	}

	if c.Woo.ConsumerKey == "" || c.Woo.ConsumerSecret == "" {
		return fmt.Errorf("woocommerce consumer key and secret are required")
	}

	if c.Woo.TimeoutSeconds < 1 {
		return fmt.Errorf("woocommerce timeout must be at least 1 second")
	}

	if c.Cron.Secret == "" {
		return fmt.Errorf("cron secret is required")
	}

	if c.Intent.TTLMinutes < 1 {
		return fmt.Errorf("intent TTL must be at least 1 minute")
	}

	if c.Intent.SweepMinutes < 1 {
		return fmt.Errorf("intent sweep interval must be at least 1 minute")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Tax.S3Enabled {
		if c.Tax.S3Bucket == "" {
			return fmt.Errorf("tax S3 bucket is required when S3 is enabled")
		}
		if c.Tax.S3Region == "" {
			return fmt.Errorf("tax S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
