package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware checks the caller's role from the verified token claims
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Check if the caller's role is admin
		if !p.IsAdmin() {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
