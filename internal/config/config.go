package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxReminderBatch is the hard ceiling on leads handled per reminder run.
const MaxReminderBatch = 50

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	PublicBaseURL      string
	LogLevel           string
	DatabaseURL        string
	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Email
	EmailProvider    string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string
	NotifyEmail      string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailSendTimeout time.Duration

	// Notification dispatch
	NotifyQueueURL    string
	NotifyWorkerCount int

	// Cal.com
	CalcomLink          string
	CalcomWebhookSecret string

	// Reminder job
	CronSecret         string
	ReminderDelay      time.Duration
	ReminderBatchSize  int
	ReminderLockTTL    time.Duration
	ReminderTriggerURL string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	LeadRateLimitPerMinute int

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	batch := getEnvAsInt("REMINDER_BATCH_SIZE", MaxReminderBatch)
	if batch <= 0 || batch > MaxReminderBatch {
		batch = MaxReminderBatch
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "https://b2bee.ai"), "/"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@notifications.b2bee.ai"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "B2Bee"),
		NotifyEmail:      getEnv("NOTIFY_EMAIL", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailSendTimeout: getEnvAsDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),

		NotifyQueueURL:    getEnv("NOTIFY_QUEUE_URL", ""),
		NotifyWorkerCount: getEnvAsInt("NOTIFY_WORKER_COUNT", 2),

		CalcomLink:          getEnv("CALCOM_LINK", "https://cal.com"),
		CalcomWebhookSecret: getEnv("CALCOM_WEBHOOK_SECRET", ""),

		CronSecret:         getEnv("CRON_SECRET", ""),
		ReminderDelay:      getEnvAsDuration("REMINDER_DELAY", time.Minute),
		ReminderBatchSize:  batch,
		ReminderLockTTL:    getEnvAsDuration("REMINDER_LOCK_TTL", 5*time.Minute),
		ReminderTriggerURL: getEnv("REMINDER_TRIGGER_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		LeadRateLimitPerMinute: getEnvAsInt("LEAD_RATE_LIMIT_PER_MINUTE", 10),

		AWSRegion:           getEnv("AWS_REGION", "eu-west-2"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// EmailConfigured reports whether outbound email has enough settings to send.
func (c *Config) EmailConfigured() bool {
	switch c.EmailProvider {
	case "sendgrid":
		return c.SendGridAPIKey != "" && c.EmailFromAddress != ""
	case "ses":
		return c.EmailFromAddress != ""
	case "smtp":
		return c.SMTPHost != "" && c.EmailFromAddress != ""
	default:
		return false
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
