// auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey          = "userID"
	UserNameKey        = "userName"
	UserEmailKey       = "userEmail"
	UserPermissionsKey = "userPermissions"
)

// AuthMiddleware resolves the bearer token and stores the caller in the gin
// context.
func AuthMiddleware(auth service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) && !errors.Is(err, service.ErrUserDisabled) {
				logging.FromContext(c.Request.Context()).Warn("token validation failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserNameKey, user.Name)
		c.Set(UserEmailKey, user.Email)
		c.Set(UserPermissionsKey, user.Permissions)

		logger := logging.FromContext(c.Request.Context()).With(zap.String("user_id", user.ID))
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))
		c.Next()
	}
}
