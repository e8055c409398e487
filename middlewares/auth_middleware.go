package middlewares

import (
	"net/http"
	"strings"

	"macrolog/services"

	"github.com/gin-gonic/gin"
)

const UserIDKey = "userID"

// AuthMiddleware resolves the bearer token (header, or ?access_token= for
// websocket upgrades) into a session. Failures carry the re-auth redirect.
func AuthMiddleware(sm *services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else if q := c.Query("access_token"); q != "" {
			token = q
		}

		sess, err := sm.Authenticate(token)
		if err != nil {
			r := sm.Redirect()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":             err.Error(),
				"redirect":          r.URL,
				"retryAfterSeconds": r.RetryAfterSeconds,
			})
			return
		}
		c.Set(UserIDKey, sess.UserID)
		c.Next()
	}
}

// UserID returns the authenticated subject set by AuthMiddleware.
func UserID(c *gin.Context) string { return c.GetString(UserIDKey) }
