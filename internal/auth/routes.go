package auth

import (
	"research-hub-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, authService *AuthService, logService LogServicePort) {
	authController := &AuthController{AuthService: authService, LogService: logService}

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authController.Register)
		authGroup.POST("/login", authController.Login)
	}

	protected := r.Group("/api")
	protected.Use(middlewares.AuthMiddleware())
	{
		protected.GET("/auth/me", authController.Me)
		protected.GET("/users", authController.GetAllUsers)
	}
}
