// Package config reads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
}

// Load builds the Config from environment variables. DATABASE_URL and
// JWT_SECRET have no sensible defaults and are required; everything else
// falls back to a development default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        readEnv("PORT", "8083"),
		Environment: readEnv("ENVIRONMENT", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MongoURI:    readEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     readEnv("MONGO_DB", "listing_media"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func readEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
