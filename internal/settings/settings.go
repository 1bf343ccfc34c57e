// Package settings provides environment-tiered configuration.
//
// The active tier is selected with APP_ENV (production, staging or
// testing). Tiers only change defaults; any value can still be
// overridden through its environment variable.
package settings

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Environment names a configuration tier.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvStaging    Environment = "staging"
	EnvTesting    Environment = "testing"
)

// EmailSettings configures outgoing notification mail.
// LogOnly mode writes the message to the log instead of sending it.
type EmailSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Admin    string
	LogOnly  bool
}

// Settings holds the resolved configuration for the current process.
type Settings struct {
	Env      Environment
	Debug    bool
	LogLevel string
	Port     string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	CacheURL       string
	AllowedOrigins []string
	SentryDSN      string

	Email EmailSettings

	// Maintenance windows for the periodic sweep tasks.
	StaleRunCutoff time.Duration
	RunRetention   time.Duration
}

var (
	current *Settings
	mu      sync.Mutex
)

// Get returns the process-wide settings, loading them on first use.
func Get() *Settings {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = Load()
	}
	return current
}

// Reload discards the cached settings and loads them again from the
// environment. Intended for tests.
func Reload() *Settings {
	mu.Lock()
	defer mu.Unlock()
	current = Load()
	return current
}

// Load reads configuration from environment variables, applying the
// defaults of the tier selected by APP_ENV.
func Load() *Settings {
	// Load .env file if it exists
	_ = godotenv.Load()

	env := Environment(getEnv("APP_ENV", string(EnvProduction)))
	switch env {
	case EnvProduction, EnvStaging, EnvTesting:
	default:
		env = EnvProduction
	}

	s := &Settings{
		Env:  env,
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "simcontrol"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", defaultDBName(env)),
		DBPort:     getEnv("DB_PORT", "5432"),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", ""),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		CacheURL:  getEnv("CACHE_URL", ""),
		SentryDSN: getEnv("SENTRY_DSN", ""),

		StaleRunCutoff: getEnvAsDuration("STALE_RUN_CUTOFF", 2*time.Hour),
		RunRetention:   getEnvAsDuration("RUN_RETENTION", 30*24*time.Hour),
	}

	s.Debug = getEnvAsBool("DEBUG", env == EnvTesting)
	s.LogLevel = getEnv("LOG_LEVEL", defaultLogLevel(env))
	s.AllowedOrigins = splitOrigins(getEnv("ALLOWED_ORIGINS", defaultOrigins(env)))

	s.Email = EmailSettings{
		Host:     getEnv("EMAIL_HOST", ""),
		Port:     getEnvAsInt("EMAIL_PORT", 587),
		User:     getEnv("EMAIL_USER", ""),
		Password: getEnv("EMAIL_PASSWORD", ""),
		From:     getEnv("EMAIL_FROM", "simcontrol@localhost"),
		Admin:    getEnv("EMAIL_ADMIN", ""),
	}
	// The testing tier never sends real mail, and neither does any
	// tier without a configured host.
	s.Email.LogOnly = env == EnvTesting || s.Email.Host == ""

	return s
}

func defaultDBName(env Environment) string {
	switch env {
	case EnvStaging:
		return "simcontrol_staging"
	case EnvTesting:
		return "simcontrol_test"
	default:
		return "simcontrol"
	}
}

func defaultLogLevel(env Environment) string {
	if env == EnvTesting {
		return "debug"
	}
	return "info"
}

func defaultOrigins(env Environment) string {
	// Staging keeps the local frontend reachable without extra setup.
	if env == EnvStaging {
		return "http://localhost:3000"
	}
	return ""
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
