package project

import (
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, projectService *ProjectService) {
	projectController := &ProjectController{ProjectService: projectService}

	projectGroup := r.Group("/api/projects")
	projectGroup.Use(middlewares.AuthMiddleware())
	{
		projectGroup.POST("", projectController.CreateProject)
		projectGroup.GET("", projectController.ListProjects)
		projectGroup.POST("/:id/activities", projectController.CreateActivity)
		projectGroup.POST("/:id/participants", projectController.AddParticipant)
		projectGroup.DELETE("/:id/participants/:userId", projectController.RemoveParticipant)
	}
}
