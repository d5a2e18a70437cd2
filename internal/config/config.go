package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Currency CurrencyConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// CurrencyConfig holds the base currency and the static exchange rate
// table. Rates are expressed as base units per one unit of the foreign
// currency.
type CurrencyConfig struct {
	BaseCurrency string
	// Raw EXCHANGE_RATES value, e.g. "EUR=1.08,GBP=1.27"; empty means the
	// built-in table.
	Rates string
}

// SecretsConfig selects the secret backend used to resolve the database
// password when DB_PASSWORD is not set directly.
type SecretsConfig struct {
	// Backend: "env", "local", "aws", "vault"
	Backend string

	// Path of the database password secret in the chosen backend
	DBPasswordPath string

	// local backend
	LocalPath string

	// aws backend
	AWSRegion string

	// vault backend
	VaultAddress string
	VaultToken   string
	VaultMount   string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "subscription_tracker"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Currency: CurrencyConfig{
			BaseCurrency: getEnv("BASE_CURRENCY", "USD"),
			Rates:        getEnv("EXCHANGE_RATES", ""),
		},
		Secrets: SecretsConfig{
			Backend:        getEnv("SECRETS_BACKEND", "env"),
			DBPasswordPath: getEnv("DB_PASSWORD_SECRET_PATH", "subscription-tracker/db/password"),
			LocalPath:      getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
			VaultAddress:   getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultMount:     getEnv("VAULT_MOUNT_PATH", "secret"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if cfg.Secrets.Backend == "env" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required when SECRETS_BACKEND=env")
	}
	if len(cfg.Currency.BaseCurrency) != 3 {
		return nil, fmt.Errorf("BASE_CURRENCY must be a 3-letter code")
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ParseRates parses the EXCHANGE_RATES value into a rate table. The
// format is comma-separated CODE=RATE pairs; an empty value yields the
// built-in table.
func (c *CurrencyConfig) ParseRates() (map[string]decimal.Decimal, error) {
	if strings.TrimSpace(c.Rates) == "" {
		return domain.DefaultExchangeRates(), nil
	}
	rates := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(c.Rates, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid exchange rate entry %q", pair)
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		if code == "" {
			return nil, fmt.Errorf("invalid exchange rate entry %q", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid exchange rate for %s: %w", code, err)
		}
		rates[code] = rate
	}
	return rates, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
