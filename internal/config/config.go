// Package config provides configuration loading for the catalog-api service.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the catalog-api service.
type Config struct {
	// Server settings
	Port        string
	Environment string

	// Database settings
	DatabaseURL    string
	MigrationsPath string

	// Object storage (source file content and export artifacts)
	BlobEndpointURL     string
	BlobAccessKeyID     string
	BlobSecretAccessKey string
	BlobRegion          string
	BlobBucket          string
	BlobLocalRoot       string

	// API connector settings
	APIRateLimit float64
	APIRateBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:        getEnv("CATALOG_API_PORT", "4020"),
		Environment: getEnv("CATALOG_API_ENV", "development"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./migrations"),

		BlobEndpointURL:     getEnv("CATALOG_BLOB_ENDPOINT", ""),
		BlobAccessKeyID:     getEnv("CATALOG_BLOB_ACCESS_KEY", ""),
		BlobSecretAccessKey: getEnv("CATALOG_BLOB_SECRET_KEY", ""),
		BlobRegion:          getEnv("CATALOG_BLOB_REGION", ""),
		BlobBucket:          getEnv("CATALOG_BLOB_BUCKET", "catalog"),
		BlobLocalRoot:       getEnv("CATALOG_BLOB_LOCAL_ROOT", ""),

		APIRateLimit: getEnvFloat("CATALOG_API_RATE_LIMIT", 10.0),
		APIRateBurst: getEnvInt("CATALOG_API_RATE_BURST", 5),
	}
}

// IsProduction reports whether the service runs in a production-equivalent
// environment, which suppresses error details in responses.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
