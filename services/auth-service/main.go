package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/orderhub/backend/pkg/aws"
	"github.com/orderhub/backend/services/auth-service/controllers"
	"github.com/orderhub/backend/services/auth-service/database"
	"github.com/orderhub/backend/services/auth-service/models"
	"github.com/orderhub/backend/services/auth-service/repository"
	"github.com/orderhub/backend/services/auth-service/routes"
	"github.com/orderhub/backend/services/auth-service/rpc"
	"github.com/orderhub/backend/services/auth-service/services"
	"github.com/orderhub/backend/services/common/authguard"
	"github.com/orderhub/backend/services/common/broker"
	apperrors "github.com/orderhub/backend/services/common/errors"
	"github.com/orderhub/backend/services/common/logger"
	"github.com/orderhub/backend/services/common/middleware"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog := logger.New(cfg.Env)
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(database.Config{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		SSLMode:  cfg.PostgresSSLMode,
		TimeZone: cfg.PostgresTimeZone,
	}, zlog, &models.User{})
	if err != nil {
		zlog.Fatal("failed to connect to postgres", zap.Error(err))
	}

	awsCfg, err := aws.LoadConfig(ctx)
	if err != nil {
		zlog.Fatal("failed to load aws config", zap.Error(err))
	}
	brokerClient := broker.New(awsCfg, broker.Options{Logger: zlog})

	userRepo := repository.NewUserRepository(db)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(userRepo, tokenService, zlog)

	responder := rpc.NewValidateResponder(brokerClient, authService, cfg.ValidateQueueURL, zlog)
	go brokerClient.Consume(ctx, cfg.ValidateQueueURL, responder.Handle)

	// The /me endpoint is guarded in-process: this service is the
	// credential authority, so its guard skips the broker round trip
	// and validates directly.
	guard := authguard.New(localValidator{authService}, cfg.ValidateQueueURL, authguard.DefaultTimeout, zlog)

	authController := controllers.NewAuthController(authService, cfg.CookieName, cfg.TokenTTL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(middleware.SecurityHeaders())
	r.Use(apperrors.ErrorMiddleware())
	routes.RegisterAuthRoutes(r, authController, guard, cfg.CookieName)

	zlog.Info("auth service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
