package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/decantbox/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		bundles := v1.Group("/bundles")
		{
			bundles.POST("/match", handler.MatchBundle)
			bundles.POST("/lottery", handler.DrawLottery)
		}

		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
		}

		requests := v1.Group("/requests")
		{
			requests.POST("/dedup", handler.DeduplicateRequests)
		}
	}

	return router
}
