package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/session"
)

// Session resolves the session cookie once per request and stores the
// result on the request context.
func Session(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Cookie(svc.CookieName())
		res := svc.Resolve(value)
		c.Request = c.Request.WithContext(session.WithResolution(c.Request.Context(), res))
		c.Next()
	}
}

// RequireOwner rejects requests whose route parameter does not name the
// signed-in user.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := session.FromContext(c.Request.Context())
		if !res.SignedIn {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		if res.User == nil || res.User.Sub != c.Param(param) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Forbidden"})
			return
		}
		c.Next()
	}
}
