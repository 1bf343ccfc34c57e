package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"simcontrol/internal/middleware"
	"simcontrol/internal/settings"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter() *gin.Engine {
	cfg := settings.Get()

	r := gin.Default()

	// Add health check endpoint
	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 50,
		Burst:             100,
	}))

	SetupBotSimulationRunRoutes(r)
	SetupPeriodicTaskRoutes(r)

	return r
}
