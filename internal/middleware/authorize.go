package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gadamagado/api/internal/models"
)

// RequireRoles gates a route to principals whose role is in the allowed
// set. It runs after Require and performs no I/O.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized",
			})
			return
		}

		if _, allowed := roleSet[user.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": fmt.Sprintf("User role %s is not authorized to access this route", user.Role),
			})
			return
		}

		c.Next()
	}
}
