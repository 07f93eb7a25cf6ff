package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/orderhub/backend/pkg/aws"
	"github.com/orderhub/backend/services/billing-service/consumer"
	"github.com/orderhub/backend/services/billing-service/controllers"
	"github.com/orderhub/backend/services/billing-service/database"
	"github.com/orderhub/backend/services/billing-service/kafka"
	"github.com/orderhub/backend/services/billing-service/models"
	"github.com/orderhub/backend/services/billing-service/repository"
	"github.com/orderhub/backend/services/billing-service/routes"
	"github.com/orderhub/backend/services/billing-service/services"
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
	}, zlog, &models.Invoice{})
	if err != nil {
		zlog.Fatal("failed to connect to postgres", zap.Error(err))
	}

	awsCfg, err := aws.LoadConfig(ctx)
	if err != nil {
		zlog.Fatal("failed to load aws config", zap.Error(err))
	}
	brokerClient := broker.New(awsCfg, broker.Options{
		ReplyQueueURL: cfg.ReplyQueueURL,
		Logger:        zlog,
	})
	go brokerClient.StartReplyLoop(ctx)

	var events services.EventProducerAPI
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		events = producer
	}

	invoiceRepo := repository.NewInvoiceRepository(db)
	billingService := services.NewBillingService(invoiceRepo, events, zlog)

	billingConsumer := consumer.NewBillingConsumer(brokerClient, billingService, cfg.BillingQueueURL, zlog)
	go brokerClient.Consume(ctx, cfg.BillingQueueURL, billingConsumer.Handle)

	guard := authguard.New(brokerClient, cfg.ValidateQueueURL, cfg.AuthTimeout, zlog)
	invoiceController := controllers.NewInvoiceController(billingService, zlog)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(middleware.SecurityHeaders())
	r.Use(apperrors.ErrorMiddleware())
	routes.RegisterBillingRoutes(r, invoiceController, guard, cfg.CookieName)

	zlog.Info("billing service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
