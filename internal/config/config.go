package config

import (
	"fmt"
	"os"
)

// Config holds everything the process needs from the environment. It is
// loaded once in main and passed into constructors explicitly.
type Config struct {
	AppPort         string
	Env             string
	DatabaseURL     string
	JWTSecret       string
	NatsURL         string
	WeatherstackURL string
	WeatherstackKey string
	OTLPEndpoint    string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "5000"),
		Env:             getEnv("APP_ENV", "development"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
		WeatherstackURL: getEnv("WEATHERSTACK_URL", "http://api.weatherstack.com"),
		WeatherstackKey: os.Getenv("WEATHERSTACK_API_KEY"),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
	}

	cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "weather"),
	)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.WeatherstackKey == "" {
		return nil, fmt.Errorf("WEATHERSTACK_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
