// admin_only.go
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"print-order-service/internal/service"
)

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := c.GetStringSlice(UserPermissionsKey)
		if !slices.Contains(perms, service.AdminPermission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}
