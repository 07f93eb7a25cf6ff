package database

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/orderhub/backend/services/common/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connect connects to MongoDB using the provided URI and database name.
func Connect(mongoURL, dbName string, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURL)

	client, err := mongo.Connect(timeoutCtx, clientOptions)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrDatabaseConnection, err)
	}
	if err := client.Ping(timeoutCtx, nil); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrDatabaseConnection, err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", dbName))
	return client, client.Database(dbName), nil
}

// Close disconnects from MongoDB.
func Close(client *mongo.Client) error {
	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
