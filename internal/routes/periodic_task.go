package routes

import (
	"github.com/gin-gonic/gin"

	"simcontrol/internal/handlers"
)

// SetupPeriodicTaskRoutes sets up the periodic task routes
func SetupPeriodicTaskRoutes(r *gin.Engine) {
	v1 := r.Group("/periodic-tasks")
	{
		v1.POST("", handlers.CreatePeriodicTask)
		v1.GET("", handlers.ListPeriodicTasks)
		v1.GET("/:id", handlers.GetPeriodicTask)
		v1.PUT("/:id", handlers.UpdatePeriodicTask)
		v1.POST("/:id/enable", handlers.SetPeriodicTaskEnabled(true))
		v1.POST("/:id/disable", handlers.SetPeriodicTaskEnabled(false))
		v1.DELETE("/:id", handlers.DeletePeriodicTask)
	}
}
