package middleware

import (
	"github.com/gin-gonic/gin"
)

// callerIDKey is the gin context key holding the resolved caller identity.
const callerIDKey = "callerID"

// CallerIDMiddleware resolves the acting user for audit fields. There is no
// auth layer in front of this API; callers identify themselves via the
// X-User-ID header, and requests without one act as the configured default
// identity.
func CallerIDMiddleware(defaultUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-User-ID")
		if id == "" {
			id = defaultUserID
		}
		c.Set(callerIDKey, id)
		c.Next()
	}
}

// CallerIDFromCtx returns the caller identity set by CallerIDMiddleware.
func CallerIDFromCtx(c *gin.Context) string {
	return c.GetString(callerIDKey)
}
