package handlers

import (
	"net/http"
	"strings"
	"time"

	"trimly/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// RevokeTokenHandler blacklists the caller's bearer token until it would
// have expired on its own. Runs behind the auth middleware, so the token is
// already known valid.
func RevokeTokenHandler(c *gin.Context) {
	tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	ttl := time.Hour
	if token, err := utils.ValidateToken(tokenString); err == nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				if until := time.Until(time.Unix(int64(exp), 0)); until > 0 {
					ttl = until
				}
			}
		}
	}

	if err := utils.RevokeToken(c.Request.Context(), tokenString, ttl); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to revoke token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
