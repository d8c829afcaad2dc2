// admin_only.go
package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// AdminOnly corta la request si el usuario no tiene el permiso "admin".
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := c.GetStringSlice("userPermissions")
		if !slices.Contains(perms, "admin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}
