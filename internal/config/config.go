// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fintrack/pkg/db" // Import db package for its Config struct
)

// Supported values for DATA_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort     string
	DataBackend    string
	DB             db.Config
	AutoMigrate    bool
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	AMQPURL        string
	AMQPExchange   string
	LogLevel       string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory, if present, is loaded first; variables
// already set in the environment take precedence over it.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	return &AppConfig{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", BackendPostgres)),
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "fintrackdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		AutoMigrate:    autoMigrate,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       tokenTTL,
		RequestTimeout: requestTimeout,
		AMQPURL:        os.Getenv("AMQP_URL"),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "fintrack.ledger"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *AppConfig) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.ServerPort); err != nil {
		problems = append(problems, fmt.Sprintf("invalid SERVER_PORT %q: must be a number", c.ServerPort))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid SERVER_PORT %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendPostgres:
		problems = append(problems, c.databaseProblems()...)
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid DATA_BACKEND %q: must be %q or %q", c.DataBackend, BackendPostgres, BackendMemory))
	}

	if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be set and at least 16 bytes long")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid TOKEN_TTL %v: must be positive", c.TokenTTL))
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid REQUEST_TIMEOUT %v: must be positive", c.RequestTimeout))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
	}

	return joinProblems(problems)
}

// ValidateMigrate checks only what schema migrations need. The server-side
// settings (JWT_SECRET, timeouts, AMQP) are not consulted.
func (c *AppConfig) ValidateMigrate() error {
	var problems []string
	if c.DataBackend != BackendPostgres {
		problems = append(problems, fmt.Sprintf("invalid DATA_BACKEND %q: migrations require %q", c.DataBackend, BackendPostgres))
	}
	problems = append(problems, c.databaseProblems()...)
	return joinProblems(problems)
}

func (c *AppConfig) databaseProblems() []string {
	var problems []string
	if c.DB.Host == "" || c.DB.DBName == "" {
		problems = append(problems, "DB_HOST and DB_NAME are required for the postgres backend")
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid DB_PORT %d: must be between 1 and 65535", c.DB.Port))
	}
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
