package middleware

import (
	"net/http"
	"strings"

	"petcare/internal/pkg/jwt"
	"petcare/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// JWTAuth validates the bearer token issued by the accounts service and puts
// user_id and role into the request context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithDetails(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required", nil)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.ErrorWithDetails(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'", nil)
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.ErrorWithDetails(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole lets through only users holding one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.ErrorWithDetails(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token", nil)
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.ErrorWithDetails(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions", nil)
	}
}
