package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when NEXT_PUBLIC_API_URL is unset. The HTTP client
// falls back to the same value so both stay consistent.
const DefaultAPIURL = "https://akash-dragon-ats-score-checker.hf.space"

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Upload  UploadConfig
	Session SessionConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type APIConfig struct {
	BaseURL string
	// Timeout of zero means the scoring service may take as long as it likes.
	Timeout time.Duration
}

type UploadConfig struct {
	MaxFileSize int64
}

type SessionConfig struct {
	Expiration time.Duration
	CookieName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		API: APIConfig{
			BaseURL: getEnv("NEXT_PUBLIC_API_URL", DefaultAPIURL),
			Timeout: getEnvAsDuration("API_TIMEOUT", "0s"),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		},
		Session: SessionConfig{
			Expiration: getEnvAsDuration("SESSION_EXPIRATION", "24h"),
			CookieName: getEnv("SESSION_COOKIE", "resume_analyzer_session"),
		},
	}
}

// BodyLimit is the largest request body the server reads. It sits well above
// the file cap so oversize uploads reach the form and get an inline error.
func (u UploadConfig) BodyLimit() int {
	const floor = 32 * 1024 * 1024
	if limit := 4 * u.MaxFileSize; limit > floor {
		return int(limit)
	}
	return floor
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
