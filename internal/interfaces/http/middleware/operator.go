package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"licensekit.backend/pkg/jwt"
)

const OperatorKey = "operator"

// OperatorAuthMiddleware protects the operator override and admin endpoints
// with a JWT minted by the operator-token CLI
func OperatorAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "operator token is required",
			})
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			msg := "invalid operator token"
			if err == jwt.ErrExpiredToken {
				msg = "operator token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": msg,
			})
			return
		}

		c.Set(OperatorKey, claims.Operator)
		c.Next()
	}
}

// GetOperator returns the operator name set by OperatorAuthMiddleware
func GetOperator(c *gin.Context) (string, bool) {
	op, exists := c.Get(OperatorKey)
	if !exists {
		return "", false
	}
	return op.(string), true
}
