// Package main is the entry point for the warebase API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warebase/config"
	"warebase/internal/domain/warehouse"
	"warebase/internal/infrastructure/cache"
	v1 "warebase/internal/infrastructure/http/v1"
	"warebase/internal/infrastructure/storage/postgres"
	"warebase/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting warebase server")

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Domain wiring ---
	txManager := postgres.NewTxManager(pool)
	warehouseRepo := postgres.NewWarehouseRepo(txManager)
	warehouseService := warehouse.NewService(warehouseRepo, txManager)

	// --- Optional rate limiter backend ---
	var cacheClient cache.Client
	if cfg.RateLimitEnabled {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
		}
		defer redisClient.Close()
		cacheClient = redisClient
		log.Infow("rate limiting enabled",
			"max_requests", cfg.RateLimitMaxRequests,
			"period", cfg.RateLimitPeriod,
		)
	}

	jwtSecret := ""
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required when AUTH_ENABLED=true")
		}
		jwtSecret = cfg.JWTSecret
		log.Info("bearer token auth enabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		WarehouseService: warehouseService,
		Pool:             pool,
		Logger:           log.WithComponent("http"),
		JWTSecret:        jwtSecret,
		Cache:            cacheClient,
		RateLimitMax:     cfg.RateLimitMaxRequests,
		RateLimitWindow:  cfg.RateLimitPeriod,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
