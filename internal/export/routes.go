package export

import (
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, exportService *ExportService) {
	exportController := &ExportController{ExportService: exportService}

	exportGroup := r.Group("/api/forms")
	exportGroup.Use(middlewares.AuthMiddleware())
	{
		exportGroup.GET("/:id/export", exportController.ExportResponses)
	}
}
