package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port     string
	MongoURI string
	RedisURL string

	// Retention policy
	RetentionHours         int
	GracePeriodDays        int
	CleanupIntervalMinutes int

	// Reporting
	CaseNumberPrefix string
	ReportCacheTTL   time.Duration
	AdminAPIKey      string

	// External incident sink (fire-and-forget)
	AlertWebhookURL string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3001"),
		MongoURI: getEnv("MONGODB_URI", ""),
		RedisURL: getEnv("REDIS_URL", ""),

		RetentionHours:         getIntEnv("RETENTION_HOURS", 24),
		GracePeriodDays:        getIntEnv("GRACE_PERIOD_DAYS", 7),
		CleanupIntervalMinutes: getIntEnv("CLEANUP_INTERVAL_MINUTES", 60),

		CaseNumberPrefix: getEnv("CASE_NUMBER_PREFIX", "PROC"),
		ReportCacheTTL:   time.Duration(getIntEnv("REPORT_CACHE_TTL_SECONDS", 60)) * time.Second,
		AdminAPIKey:      getEnv("ADMIN_API_KEY", ""),

		AlertWebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
	}
}

// RetentionWindow returns the active-retention window as a duration.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// GracePeriod returns the post-expiry window before physical removal.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodDays) * 24 * time.Hour
}

// CleanupInterval returns how often the cleanup job ticks.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
