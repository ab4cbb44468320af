package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerHeader carries the authenticated owner id, set by the gateway in front
// of this service.
const OwnerHeader = "X-Owner-ID"

const ownerKey = "ownerId"

// OwnerMiddleware rejects requests without an owner header and stores the
// owner id on the context.
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if owner == "" {
			RespondWithError(c, http.StatusUnauthorized, OwnerHeader+" header required")
			c.Abort()
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func GetOwnerID(c *gin.Context) (string, bool) {
	owner, exists := c.Get(ownerKey)
	if !exists {
		return "", false
	}
	id, ok := owner.(string)
	return id, ok
}
