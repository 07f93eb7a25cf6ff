package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/orderhub/backend/pkg/aws"
	"github.com/orderhub/backend/services/common/authguard"
	"github.com/orderhub/backend/services/common/broker"
	apperrors "github.com/orderhub/backend/services/common/errors"
	"github.com/orderhub/backend/services/common/logger"
	"github.com/orderhub/backend/services/common/middleware"
	"github.com/orderhub/backend/services/order-service/controllers"
	"github.com/orderhub/backend/services/order-service/database"
	"github.com/orderhub/backend/services/order-service/repository"
	"github.com/orderhub/backend/services/order-service/routes"
	"github.com/orderhub/backend/services/order-service/rpc"
	"github.com/orderhub/backend/services/order-service/services"
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

	client, db, err := database.Connect(cfg.MongoURL, cfg.MongoDB, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer database.Close(client)

	awsCfg, err := aws.LoadConfig(ctx)
	if err != nil {
		zlog.Fatal("failed to load aws config", zap.Error(err))
	}
	brokerClient := broker.New(awsCfg, broker.Options{
		TopicARN:      cfg.BillingTopicARN,
		ReplyQueueURL: cfg.ReplyQueueURL,
		Logger:        zlog,
	})
	go brokerClient.StartReplyLoop(ctx)

	guard := authguard.New(brokerClient, cfg.ValidateQueueURL, cfg.AuthTimeout, zlog)

	orderRepo := repository.NewOrderRepository(client, db)
	orderService := services.NewOrderService(orderRepo, brokerClient, zlog)
	orderController := controllers.NewOrderController(orderService, zlog)

	if cfg.CreateOrderQueueURL != "" {
		consumer := rpc.NewCreateOrderConsumer(brokerClient, guard, orderService, cfg.CreateOrderQueueURL, zlog)
		go brokerClient.Consume(ctx, cfg.CreateOrderQueueURL, consumer.Handle)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(middleware.SecurityHeaders())
	r.Use(apperrors.ErrorMiddleware())
	routes.RegisterOrderRoutes(r, orderController, guard, cfg.CookieName)

	zlog.Info("order service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
