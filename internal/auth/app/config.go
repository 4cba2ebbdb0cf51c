package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/pkg/cryptox"
	"github.com/shopking/auth/pkg/jwtx"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	SessionSecret string        // Required: HMAC key for session tokens, at least 32 bytes
	Issuer        string        // Optional: iss claim (default: shopking-auth)
	SessionTTL    time.Duration // Optional: session lifetime (default: 7 days)
	ResetTTL      time.Duration // Optional: reset link lifetime (default: 15m)
	PasswordCost  int           // Optional: bcrypt cost (default: 10)

	DatabaseFile string   // Optional: path to SQLite database file (default: ./auth.db)
	ResetURLBase string   // Optional: prefix of the mailed reset link
	AdminEmails  []string // Optional: emails that register as admin

	AMQPURL string // Optional: RabbitMQ URL; unset logs reset links instead

	RedisAddr     string // Optional: Redis denylist; unset keeps it in SQLite
	RedisPassword string
	RedisDB       int

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		SessionSecret: os.Getenv("AUTH_SESSION_SECRET"),
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "shopking-auth"),
		SessionTTL:    getEnvDurationOrDefault("AUTH_SESSION_TTL", jwtx.DefaultSessionTTL),
		ResetTTL:      getEnvDurationOrDefault("AUTH_RESET_TTL", 15*time.Minute),
		PasswordCost:  getEnvIntOrDefault("AUTH_PASSWORD_COST", cryptox.DefaultPasswordCost),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		ResetURLBase: getEnvOrDefault("AUTH_RESET_URL_BASE", "http://localhost:3000/reset-password/"),
		AdminEmails:  getEnvListOrDefault("AUTH_ADMIN_EMAILS"),

		AMQPURL: os.Getenv("AUTH_AMQP_URL"),

		RedisAddr:     os.Getenv("AUTH_REDIS_ADDR"),
		RedisPassword: os.Getenv("AUTH_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("AUTH_REDIS_DB", 0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.SessionSecret == "" {
		errs = append(errs, errors.New("AUTH_SESSION_SECRET is required"))
	} else if len(c.SessionSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SESSION_SECRET must be at least %d bytes", jwtx.MinSecretLength))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_TTL must be positive"))
	}
	if c.ResetTTL <= 0 {
		errs = append(errs, errors.New("AUTH_RESET_TTL must be positive"))
	}
	if c.PasswordCost < bcrypt.MinCost || c.PasswordCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_PASSWORD_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("AUTH_DATABASE_FILE must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	for _, e := range c.AdminEmails {
		if !strings.Contains(e, "@") {
			errs = append(errs, fmt.Errorf("AUTH_ADMIN_EMAILS entry %q is not an email", e))
		}
	}

	return errors.Join(errs...)
}

// IsDev reports whether the service runs in local development mode.
func (c Config) IsDev() bool { return c.Env == "dev" }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma-separated list of emails, normalising
// each entry the way registration does.
func getEnvListOrDefault(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if e := domain.NormalizeEmail(part); e != "" {
			out = append(out, e)
		}
	}
	return out
}
