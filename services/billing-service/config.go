package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port             string
	Env              string
	CookieName       string
	BillingQueueURL  string
	ReplyQueueURL    string
	ValidateQueueURL string
	AuthTimeout      time.Duration
	KafkaBrokers     []string
	KafkaTopic       string
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
		Port:             getEnv("PORT", "8084"),
		Env:              getEnv("APP_ENV", "development"),
		CookieName:       getEnv("AUTH_COOKIE_NAME", "Authentication"),
		BillingQueueURL:  os.Getenv("BILLING_QUEUE_URL"),
		ReplyQueueURL:    os.Getenv("BILLING_REPLY_QUEUE_URL"),
		ValidateQueueURL: os.Getenv("AUTH_VALIDATE_QUEUE_URL"),
		AuthTimeout:      5 * time.Second,
		KafkaTopic:       getEnv("KAFKA_TOPIC", "invoice.created"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.BillingQueueURL == "" {
		return nil, fmt.Errorf("BILLING_QUEUE_URL is required")
	}
	if cfg.ValidateQueueURL == "" {
		return nil, fmt.Errorf("AUTH_VALIDATE_QUEUE_URL is required")
	}
	if cfg.ReplyQueueURL == "" {
		return nil, fmt.Errorf("BILLING_REPLY_QUEUE_URL is required")
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
