package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database. Empty or unreachable means the service runs on the local
	// snapshot store for the whole session.
	DatabaseURL string

	// Local fallback store
	LocalStorePath string

	// Google sign-in. Empty audience disables token verification and the
	// sign-in endpoint accepts the identity payload directly (demo mode).
	GoogleClientID string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// S3 avatar storage (optional)
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "data/kava.db"),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:            getEnv("ENV", "development"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "kava-avatars"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
		},
	}

	return cfg, nil
}

// AvatarsEnabled reports whether S3 avatar storage is configured
func (c *Config) AvatarsEnabled() bool {
	return c.S3.AccessKeyID != "" && c.S3.SecretAccessKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
