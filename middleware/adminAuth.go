package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"busreserve/config"
	"busreserve/utils"

	"github.com/gin-gonic/gin"
)

// AdminTokenMiddleware guards trip administration with the static ADMIN_TOKEN.
// An empty ADMIN_TOKEN disables the admin surface entirely.
func AdminTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.AppConfig.AdminToken
		if expected == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, utils.ErrorResponse{
				Code:    "AdminDisabled",
				Message: "Admin access is not configured",
			})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Code:    "Unauthenticated",
				Message: "Missing or invalid Authorization header",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(tokenString), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Code:    "Unauthenticated",
				Message: "Unauthorized admin access",
			})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
