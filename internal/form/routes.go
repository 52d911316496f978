package form

import (
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, formService FormServicePort) {
	formController := &FormController{FormService: formService}

	// Anonymous surface: token-gated form view and submission.
	publicGroup := r.Group("/api/forms/public")
	{
		publicGroup.GET("/:token", formController.GetPublicForm)
		publicGroup.POST("/:token/responses", formController.SubmitPublicResponse)
	}

	formGroup := r.Group("/api/forms")
	formGroup.Use(middlewares.AuthMiddleware())
	{
		formGroup.POST("", formController.CreateForm)
		formGroup.GET("", formController.ListForms)
		formGroup.GET("/:id", formController.GetForm)
		formGroup.PATCH("/:id", formController.UpdateForm)
		formGroup.DELETE("/:id", formController.DeleteForm)

		formGroup.POST("/:id/share", formController.ShareForm)
		formGroup.POST("/:id/share/public", formController.CreatePublicLink)

		formGroup.POST("/:id/responses", formController.SubmitResponse)
		formGroup.GET("/:id/responses", formController.ListResponses)

		formGroup.POST("/:id/comments", formController.AddComment)
		formGroup.GET("/:id/comments", formController.ListComments)
	}

	// Offline capture is unauthenticated: field devices may hold no session
	// when they come back online.
	r.POST("/api/forms/:id/offline", formController.StoreOffline)
	r.POST("/api/sync/:deviceId", formController.SyncDevice)
}
