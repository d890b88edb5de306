package middleware

import (
	"net/http"
	"strings"

	"trimly/models"
	"trimly/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxActorID = "actorID"
	CtxRole    = "role"
)

// AuthMiddleware validates the bearer token and stores the caller's identity
// and role in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sub, role, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if utils.IsTokenRevoked(c.Request.Context(), tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
			return
		}

		c.Set(CtxActorID, sub)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireRole rejects callers whose token carries a different role claim.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}

// RequireCustomer shortcuts RequireRole for the customer side.
func RequireCustomer() gin.HandlerFunc {
	return RequireRole(models.RoleCustomer)
}

// RequireBarber shortcuts RequireRole for the barber side.
func RequireBarber() gin.HandlerFunc {
	return RequireRole(models.RoleBarber)
}
