// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"warebase/internal/domain/warehouse"
	"warebase/internal/infrastructure/cache"
	"warebase/internal/infrastructure/http/v1/handlers"
	"warebase/internal/infrastructure/http/v1/middleware"
	"warebase/internal/infrastructure/storage/postgres"
	"warebase/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// WarehouseService serves the warehouse master-data endpoints
	WarehouseService *warehouse.Service

	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTSecret enables bearer token auth on /api/v1 when non-empty
	JWTSecret string

	// Cache enables per-IP rate limiting when non-nil
	Cache           cache.Client
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no rate limit)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1
	api := router.Group("/api/v1")
	{
		if cfg.Cache != nil && cfg.RateLimitMax > 0 {
			api.Use(middleware.RateLimit(cfg.Cache, cfg.RateLimitMax, cfg.RateLimitWindow))
		}
		if cfg.JWTSecret != "" {
			api.Use(middleware.Auth(cfg.JWTSecret))
		}

		warehouseHandler := handlers.NewWarehouseHandler(cfg.WarehouseService)
		warehouseHandler.Register(api.Group("/warehouses"))
	}

	return router
}
