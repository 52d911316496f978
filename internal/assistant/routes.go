package assistant

import (
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, assistantService *AssistantService) {
	assistantController := &AssistantController{AssistantService: assistantService}

	assistantGroup := r.Group("/api/forms")
	assistantGroup.Use(middlewares.AuthMiddleware())
	{
		assistantGroup.POST("/:id/assistant", assistantController.Ask)
	}
}
