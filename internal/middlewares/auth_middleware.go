package middlewares

import (
	"net/http"
	"strconv"

	"research-hub-api/config"
	"research-hub-api/internal/access"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the access_token cookie and injects the principal
// (userID + role) into the gin context. Every core operation receives the
// principal explicitly from here; nothing reads ambient session state.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.LoadConfig()
		accessToken, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		var userID uint
		switch v := claims["user_id"].(type) {
		case float64:
			userID = uint(v)
		case string:
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
				c.Abort()
				return
			}
			userID = uint(n)
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
			c.Abort()
			return
		}

		role := ""
		if s, ok := claims["role"].(string); ok {
			role = s
		}

		c.Set("userID", userID)
		c.Set("role", string(access.Normalize(role)))
		c.Next()
	}
}

// PrincipalFromContext rebuilds the typed principal set by AuthMiddleware.
func PrincipalFromContext(c *gin.Context) access.Principal {
	userID, _ := c.Get("userID")
	uid, _ := userID.(uint)
	return access.Principal{
		UserID: uid,
		Role:   access.Normalize(c.GetString("role")),
	}
}
