package main

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port             string
	Env              string
	JWTSecret        string
	TokenTTL         time.Duration
	CookieName       string
	ValidateQueueURL string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8081"),
		Env:              getEnv("APP_ENV", "development"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         15 * time.Minute,
		CookieName:       getEnv("AUTH_COOKIE_NAME", "Authentication"),
		ValidateQueueURL: os.Getenv("AUTH_VALIDATE_QUEUE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = parsed
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ValidateQueueURL == "" {
		return nil, fmt.Errorf("AUTH_VALIDATE_QUEUE_URL is required")
	}
	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
