package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware checks if the user has the admin role. Runs after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			abortForbidden(c)
			return
		}

		role, ok := roleInterface.(string)
		if !ok || role != "admin" {
			abortForbidden(c)
			return
		}

		c.Next()
	}
}

func abortForbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": "Access denied: admin role required",
		},
	})
	c.Abort()
}
