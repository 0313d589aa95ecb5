package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gadamagado/api/internal/auth"
	"gadamagado/api/internal/models"
)

const currentUserKey = "current_user"

// CurrentUser returns the principal attached by Require or Optional.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func credentialsFrom(c *gin.Context, cookieName string) auth.Credentials {
	var creds auth.Credentials

	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		creds.Bearer = strings.TrimPrefix(header, "Bearer ")
	}
	if sid, err := c.Cookie(cookieName); err == nil {
		creds.SessionID = sid
	}
	return creds
}

// Require protects private routes. Failure detail is never leaked: both an
// absent credential and an invalid one produce the same generic 401.
func Require(resolver *auth.Resolver, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := resolver.Resolve(c.Request.Context(), credentialsFrom(c, cookieName))

		switch result.Status {
		case auth.StatusResolved:
			c.Set(currentUserKey, result.User)
			c.Next()
		case auth.StatusFault:
			log.Error().Err(result.Err).
				Str("request_id", c.Writer.Header().Get(requestIDHeader)).
				Msg("authentication fault")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Authentication failed",
			})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this route",
			})
		}
	}
}

// Optional attaches the principal when one resolves but never blocks the
// request. Infrastructure faults are logged and swallowed.
func Optional(resolver *auth.Resolver, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := resolver.Resolve(c.Request.Context(), credentialsFrom(c, cookieName))

		switch result.Status {
		case auth.StatusResolved:
			c.Set(currentUserKey, result.User)
		case auth.StatusFault:
			log.Error().Err(result.Err).
				Str("request_id", c.Writer.Header().Get(requestIDHeader)).
				Msg("authentication fault on optional route")
		}

		c.Next()
	}
}
