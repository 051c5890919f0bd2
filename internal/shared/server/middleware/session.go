package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"poster-backend/internal/shared/server/respond"
)

const (
	// SessionHeader carries the id returned by POST /sessions.
	SessionHeader = "X-Session-Id"
	sessionIDKey  = "sessionId"
)

// Session requires the session header on every route except the ones in open.
// Open routes are matched by "METHOD path" on the registered route path.
func Session(open ...string) gin.HandlerFunc {
	exempt := make(map[string]struct{}, len(open))
	for _, o := range open {
		exempt[o] = struct{}{}
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		// Unmatched routes fall through to the router's 404.
		if c.FullPath() == "" {
			c.Next()
			return
		}
		if _, ok := exempt[c.Request.Method+" "+c.FullPath()]; ok {
			c.Next()
			return
		}

		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sessionID == "" {
			respond.Error(c, http.StatusUnauthorized, "missing_session", "Missing session", nil)
			return
		}
		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
