package middleware

import (
	"net/http"                      // HTTP status codes
	"payment_tracker/internal/auth" // Token verification and principals
	"strings"                       // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// principalKey is the context key the verified principal is stored under
const principalKey = "principal"

// JWTAuthMiddleware validates bearer tokens and stores the caller's principal
func JWTAuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string and verify it
		claims, err := issuer.Verify(tokenStr)                // Verify the signed token
		if err != nil {
			// If verification fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(principalKey, auth.PrincipalFromClaims(claims)) // Store the principal in context
		c.Next()                                              // Proceed to the next handler
	}
}

// PrincipalFromContext returns the principal stored by JWTAuthMiddleware
func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey) // Get principal from context
	// Check if the principal exists in context
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal) // Assert the stored type
	return p, ok
}
