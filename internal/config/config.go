package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// SMTP relay used to deliver the tax calculator email
	SMTPHost      string
	SMTPPort      int
	EmailAddress  string
	EmailPassword string

	// Google Sheets lead store
	SheetsID             string
	SheetsCredentialsB64 string

	// Local path to the spreadsheet attached to outgoing email
	TaxCalculatorFile string

	// Rate limiting
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	// Optional shared rate-limit store; empty means in-memory
	RedisAddr     string
	RedisPassword string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		EmailAddress:  getEnv("EMAIL_ADDRESS", ""),
		EmailPassword: getEnv("EMAIL_PASSWORD", ""),

		SheetsID:             getEnv("GOOGLE_SHEETS_ID", ""),
		SheetsCredentialsB64: getEnv("GOOGLE_SHEETS_CREDENTIALS_BASE64", ""),

		TaxCalculatorFile: getEnv("TAX_CALCULATOR_FILE", "tax_calculator.xlsx"),

		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 5),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
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
