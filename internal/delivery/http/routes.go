package http

import (
	"github.com/gin-gonic/gin"

	"github.com/goosegrocer/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/compare", handler.Compare)
		v1.POST("/flyers", handler.IngestFlyer)
		v1.GET("/products", handler.ListProducts)
		v1.GET("/deals", handler.ListDeals)
	}

	return router
}
