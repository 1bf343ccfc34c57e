package routes

import (
	"github.com/gin-gonic/gin"

	"simcontrol/internal/handlers"
)

// SetupBotSimulationRunRoutes sets up the simulation run routes
func SetupBotSimulationRunRoutes(r *gin.Engine) {
	v1 := r.Group("/bot-simulation-runs")
	{
		v1.POST("", handlers.CreateBotSimulationRun)
		v1.GET("", handlers.ListBotSimulationRuns)
		v1.GET("/latest", handlers.GetLatestBotSimulationRun)
		v1.GET("/:id", handlers.GetBotSimulationRun)
		v1.GET("/:id/trades", handlers.ListRunTrades)
		v1.GET("/:id/stream", handlers.StreamRunStatus)
		v1.DELETE("/:id", handlers.DeleteBotSimulationRun)
	}
}
