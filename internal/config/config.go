package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	CORSAllowedOrigins []string

	// Database
	DatabaseURL    string
	DatabaseDriver string

	// Automation webhook
	WebhookURL       string
	WebhookSecret    string
	WebhookTimeout   time.Duration
	DuplicateWindow  time.Duration
	SubmissionSource string

	// Stats / diagnostics gate
	JWTSecret string
	AdminRole string

	// Redis
	RedisURL      string
	StatsCacheTTL time.Duration

	// RabbitMQ redelivery
	AMQPURL               string
	RedeliveryMaxAttempts int
	RedeliveryDelay       time.Duration

	// SMTP alerts
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	AlertEmailFrom string
	AlertEmailTo   string

	// Pending sweep
	PendingSweepSchedule string
	PendingStaleAfter    time.Duration

	PhoneDefaultRegion string
	SentryDSN          string
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: normalizeEnvironment(getEnv("APP_ENV", getEnv("NODE_ENV", EnvProduction))),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: getEnv("DB_DRIVER", "pgx"),

		WebhookURL:       strings.TrimSpace(getEnv("WEBHOOK_URL", "")),
		WebhookSecret:    strings.TrimSpace(getEnv("WEBHOOK_SECRET", "")),
		WebhookTimeout:   getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		DuplicateWindow:  getEnvAsDuration("DUPLICATE_WINDOW", 5*time.Minute),
		SubmissionSource: getEnv("SUBMISSION_SOURCE", "website"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		AdminRole: getEnv("ADMIN_ROLE", "admin"),

		RedisURL:      getEnv("REDIS_URL", ""),
		StatsCacheTTL: getEnvAsDuration("STATS_CACHE_TTL", time.Minute),

		AMQPURL:               getEnv("AMQP_URL", ""),
		RedeliveryMaxAttempts: getEnvAsInt("REDELIVERY_MAX_ATTEMPTS", 3),
		RedeliveryDelay:       getEnvAsDuration("REDELIVERY_DELAY", time.Minute),

		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		AlertEmailFrom: getEnv("ALERT_EMAIL_FROM", "no-reply@localhost"),
		AlertEmailTo:   getEnv("ALERT_EMAIL_TO", ""),

		PendingSweepSchedule: getEnv("PENDING_SWEEP_SCHEDULE", "@every 15m"),
		PendingStaleAfter:    getEnvAsDuration("PENDING_STALE_AFTER", 30*time.Minute),

		PhoneDefaultRegion: strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "AE")),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) AlertsEnabled() bool {
	return c.SMTPHost != "" && c.AlertEmailTo != ""
}

func normalizeEnvironment(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case EnvDevelopment:
		return EnvDevelopment
	case "test":
		return "test"
	case "staging":
		return "staging"
	default:
		return EnvProduction
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
