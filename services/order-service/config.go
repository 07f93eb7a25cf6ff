package main

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port                string
	Env                 string
	MongoURL            string
	MongoDB             string
	CookieName          string
	BillingTopicARN     string
	ValidateQueueURL    string
	CreateOrderQueueURL string
	ReplyQueueURL       string
	AuthTimeout         time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8083"),
		Env:                 getEnv("APP_ENV", "development"),
		MongoURL:            getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "orders"),
		CookieName:          getEnv("AUTH_COOKIE_NAME", "Authentication"),
		BillingTopicARN:     os.Getenv("BILLING_SNS_TOPIC_ARN"),
		ValidateQueueURL:    os.Getenv("AUTH_VALIDATE_QUEUE_URL"),
		CreateOrderQueueURL: os.Getenv("CREATE_ORDER_QUEUE_URL"),
		ReplyQueueURL:       os.Getenv("ORDER_REPLY_QUEUE_URL"),
		AuthTimeout:         5 * time.Second,
	}

	if timeout := os.Getenv("AUTH_TIMEOUT"); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_TIMEOUT: %w", err)
		}
		cfg.AuthTimeout = parsed
	}

	if cfg.BillingTopicARN == "" {
		return nil, fmt.Errorf("BILLING_SNS_TOPIC_ARN is required")
	}
	if cfg.ValidateQueueURL == "" {
		return nil, fmt.Errorf("AUTH_VALIDATE_QUEUE_URL is required")
	}
	if cfg.ReplyQueueURL == "" {
		return nil, fmt.Errorf("ORDER_REPLY_QUEUE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
