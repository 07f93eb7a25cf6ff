package database

import (
	"fmt"
	"time"

	apperrors "github.com/orderhub/backend/services/common/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds the postgres connection settings.
type Config struct {
	User     string
	Password string
	DBName   string
	Host     string
	Port     string
	SSLMode  string
	TimeZone string
}

// ConnectPostgres opens a gorm connection and runs migrations for the
// given models. It retries a few times so the service survives the
// database coming up after it.
func ConnectPostgres(cfg Config, logger *zap.Logger, autoMigrateModels ...interface{}) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone,
	)

	var db *gorm.DB
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		logger.Warn("postgres connection failed, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseConnection, err)
	}

	if len(autoMigrateModels) > 0 {
		if err := db.AutoMigrate(autoMigrateModels...); err != nil {
			return nil, fmt.Errorf("auto migration failed: %w", err)
		}
	}

	logger.Info("Connected to Postgres", zap.String("database", cfg.DBName))
	return db, nil
}
