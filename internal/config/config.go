package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Webhook   WebhookConfig
	Licensing LicensingConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Operator  OperatorConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
	// URL is the externally visible base URL reported in webhook payloads
	URL string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// WebhookConfig holds outbound notification configuration
type WebhookConfig struct {
	// Secret signs outbound deactivation notices and the inbound
	// deactivate-controlled flow
	Secret  string
	Timeout time.Duration
}

// LicensingConfig holds issuance defaults and transfer policy
type LicensingConfig struct {
	DefaultActivationLimit int
	DefaultTransferLimit   int
	TransferCooldown       time.Duration
	// ChecksumSecret keys the license-key checksum digests
	ChecksumSecret string
}

// RateLimitConfig holds per-call-site sliding-window settings
type RateLimitConfig struct {
	ValidateLimit    int
	ValidateWindow   time.Duration
	DeactivateLimit  int
	DeactivateWindow time.Duration
}

// AuthConfig holds gatekeeper blocking policy
type AuthConfig struct {
	FailedAttemptThreshold int
	FailedAttemptWindow    time.Duration
}

// OperatorConfig holds operator-token settings
type OperatorConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
			URL:  getEnv("SERVER_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "licensekit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Webhook: WebhookConfig{
			Secret:  getEnv("WEBHOOK_SECRET", "change-this-in-production"),
			Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Licensing: LicensingConfig{
			DefaultActivationLimit: getEnvAsInt("LICENSE_DEFAULT_ACTIVATION_LIMIT", 1),
			DefaultTransferLimit:   getEnvAsInt("LICENSE_DEFAULT_TRANSFER_LIMIT", 1),
			TransferCooldown:       getEnvAsDuration("LICENSE_TRANSFER_COOLDOWN", 365*24*time.Hour),
			ChecksumSecret:         getEnv("LICENSE_CHECKSUM_SECRET", "change-this-in-production"),
		},
		RateLimit: RateLimitConfig{
			ValidateLimit:    getEnvAsInt("RATE_LIMIT_VALIDATE", 10),
			ValidateWindow:   getEnvAsDuration("RATE_LIMIT_VALIDATE_WINDOW", 60*time.Second),
			DeactivateLimit:  getEnvAsInt("RATE_LIMIT_DEACTIVATE", 5),
			DeactivateWindow: getEnvAsDuration("RATE_LIMIT_DEACTIVATE_WINDOW", 300*time.Second),
		},
		Auth: AuthConfig{
			FailedAttemptThreshold: getEnvAsInt("AUTH_FAILED_ATTEMPT_THRESHOLD", 5),
			FailedAttemptWindow:    getEnvAsDuration("AUTH_FAILED_ATTEMPT_WINDOW", time.Hour),
		},
		Operator: OperatorConfig{
			JWTSecret: getEnv("OPERATOR_JWT_SECRET", "change-this-in-production"),
			TokenTTL:  getEnvAsDuration("OPERATOR_TOKEN_TTL", 12*time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
