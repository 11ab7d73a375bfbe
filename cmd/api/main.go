package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shahamitr/parichay-sub004/docs"
	"github.com/shahamitr/parichay-sub004/internal/config"
	"github.com/shahamitr/parichay-sub004/internal/handler"
	"github.com/shahamitr/parichay-sub004/internal/logger"
	"github.com/shahamitr/parichay-sub004/internal/metrics"
	"github.com/shahamitr/parichay-sub004/internal/queue/sqs"
	"github.com/shahamitr/parichay-sub004/internal/repository/clickhouse"
	"github.com/shahamitr/parichay-sub004/internal/service"
	"github.com/shahamitr/parichay-sub004/internal/session"
)

// @title Microsite Analytics Service API
// @version 1.0
// @description API for tracking microsite interactions and serving analytics summaries
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	metrics.Register()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	// Initialize repository
	repo := clickhouse.NewRepository(clickhouseClient, log)

	// Reporting timezone for hour/day bucketing
	location, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		log.Fatal("Invalid reporting timezone",
			zap.String("timezone", cfg.Reporting.Timezone),
			zap.Error(err))
	}

	// Initialize services
	sessions := session.NewManager(time.Duration(cfg.Session.TTLMin)*time.Minute, nil)
	eventService := service.NewEventService(sqsClient, sessions, log)
	analyticsService := service.NewAnalyticsService(repo, location, nil, log)

	// Initialize handler
	h := handler.NewHandler(eventService, analyticsService, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
