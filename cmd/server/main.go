package main

import (
	"context" // context package is needed for Redis operations
	"time"    // Durations from config

	"local_marketplace/internal/api"        // Custom package for API handlers
	"local_marketplace/internal/config"     // Custom package for configuration
	"local_marketplace/internal/db"         // Database connection
	"local_marketplace/internal/market"     // Marketplace service
	"local_marketplace/internal/middleware" // Custom package for middleware
	"local_marketplace/internal/push"       // Push delivery

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine-readable logs in production
	}

	// Connect to the database
	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	svc := market.NewService(conn, redisClient, market.Options{
		CacheTTL:           cacheTTL,
		InitialSaleCredits: cfg.InitialSaleCredits,
	})
	registry := push.NewRegistry(conn)
	sender := push.NewExpoSender(cfg.PushEndpoint, time.Duration(cfg.PushTimeoutSeconds)*time.Second)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New() // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:             conn,
		Redis:          redisClient,
		Service:        svc,
		Registry:       registry,
		Dispatcher:     push.NewDispatcher(conn, registry, sender, push.DefaultBatchSize),
		JWTSecret:      cfg.JWTSecret,
		InitialCredits: cfg.InitialRequestCredits,
		CacheTTL:       cacheTTL,
	})

	logrus.Info("Server running on " + cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
