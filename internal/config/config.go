package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort  string
	Environment string
	Timezone    string
	Location    *time.Location

	// Record store
	StoreBackend string // sql, redis, memory
	DatabaseType string // sqlite, postgres, mysql
	DatabasePath string
	DatabaseURL  string
	RedisURL     string
	RedisPrefix  string

	// Sessions
	JWTSecret       string
	SessionDuration time.Duration
	LoginRateLimit  int

	// Content generation
	OpenAIAPIKey string
	OpenAIModel  string
	OpenAIURL    string

	// Email
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
	ReminderTime string

	timezoneErr error
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	timezone := getEnv("APP_TIMEZONE", "UTC")
	loc, tzErr := time.LoadLocation(timezone)
	if tzErr != nil {
		loc = time.UTC
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		Environment:     getEnv("APP_ENV", "development"),
		Timezone:        timezone,
		Location:        loc,
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", "sql")),
		DatabaseType:    strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabasePath:    getEnv("DB_PATH", "./studyquest.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:     getEnv("REDIS_PREFIX", "studyquest"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 10),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIURL:       getEnv("OPENAI_URL", "https://api.openai.com/v1/chat/completions"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    getEnv("SES_FROM_EMAIL", ""),
		SESFromName:     getEnv("SES_FROM_NAME", "StudyQuest"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		ReminderTime:    getEnv("REMINDER_TIME", "18:00"),
		timezoneErr:     tzErr,
	}
}

// Validate reports settings that Load could not use. Streaks and daily
// reminders depend on the timezone, so an unknown APP_TIMEZONE is fatal.
func (c *Config) Validate() error {
	if c.timezoneErr != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, c.timezoneErr)
	}
	return nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
